package content

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const samplePage = `---
title: "Versand"
summary: "Lieferzeiten und Kosten."
updated_at: "2026-02-01"
---
## Lieferzeit

Jeder Schriftzug wird **individuell** gefertigt.

<script>alert(1)</script>
`

func TestPageRendersMarkdownAndSanitizes(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "versand.de.md"), []byte(samplePage), 0o600); err != nil {
		t.Fatal(err)
	}

	l := NewLibrary(dir)
	p, err := l.Page("versand", "de")
	if err != nil {
		t.Fatalf("Page: %v", err)
	}
	if p.Title != "Versand" {
		t.Errorf("Title = %q", p.Title)
	}
	body := string(p.Body)
	if !strings.Contains(body, "<h2") || !strings.Contains(body, "<strong>individuell</strong>") {
		t.Errorf("markdown not rendered: %q", body)
	}
	if strings.Contains(body, "<script") {
		t.Errorf("script survived sanitization: %q", body)
	}
	if p.UpdatedAt.IsZero() {
		t.Error("UpdatedAt not parsed")
	}
}

func TestPageCachesRenderedResult(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "versand.de.md")
	if err := os.WriteFile(path, []byte(samplePage), 0o600); err != nil {
		t.Fatal(err)
	}

	l := NewLibrary(dir)
	if _, err := l.Page("versand", "de"); err != nil {
		t.Fatal(err)
	}
	// Delete the file; the cached render must still answer.
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	p, err := l.Page("versand", "de")
	if err != nil {
		t.Fatalf("cached Page: %v", err)
	}
	if p.Title != "Versand" {
		t.Errorf("Title = %q", p.Title)
	}
}

func TestPageFallsBackToShippedCopy(t *testing.T) {
	l := NewLibrary(t.TempDir())

	p, err := l.Page("pflege", "de")
	if err != nil {
		t.Fatalf("Page: %v", err)
	}
	if p.Title != "Pflegehinweise" {
		t.Errorf("Title = %q", p.Title)
	}

	// Unknown language still finds the page.
	p, err = l.Page("pflege", "fr")
	if err != nil {
		t.Fatalf("Page: %v", err)
	}
	if p.Slug != "pflege" {
		t.Errorf("Slug = %q", p.Slug)
	}
}

func TestPageRejectsTraversal(t *testing.T) {
	l := NewLibrary(t.TempDir())
	if _, err := l.Page("../../etc/passwd", "de"); err == nil {
		t.Fatal("want error for traversal slug")
	}
}
