package middleware

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	sessionCookieName = "STOREFRONT_SESSION"
	sessionLifetime   = 30 * 24 * time.Hour
)

// SessionData is the signed cookie payload. It carries only identity and
// preferences; the live page and customizer state live server-side, keyed
// by ID.
type SessionData struct {
	ID        string    `json:"id"`
	Locale    string    `json:"locale,omitempty"`
	CSRFToken string    `json:"csrf,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	// internal dirty flag; not serialized
	dirty bool `json:"-"`
}

var sessionSignKey []byte
var sessionSecure bool

func init() {
	// signing key from the environment; without one, sessions do not
	// survive restarts (acceptable for local dev, logged loudly)
	if key := os.Getenv("STOREFRONT_SESSION_SIGNING_KEY"); key != "" {
		sessionSignKey = []byte(key)
	} else {
		sessionSignKey = make([]byte, 32)
		if _, err := rand.Read(sessionSignKey); err != nil {
			log.Printf("session: signing key generation failed: %v", err)
			sessionSignKey = []byte("insecure-dev-key-please-set-STOREFRONT_SESSION_SIGNING_KEY")
		}
		log.Printf("session: using ephemeral signing key (dev). Set STOREFRONT_SESSION_SIGNING_KEY for production.")
	}
	sessionSecure = strings.ToLower(os.Getenv("STOREFRONT_ENV")) == "prod"
}

// Session loads or initializes the visitor session and stores it in the
// request context. The cookie is (re)written lazily, right before the first
// response byte, so handlers may still mutate the session.
func Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sd, fromCookie := readSessionCookie(r)
		if sd.ID == "" {
			now := time.Now().UTC()
			sd.ID = randID()
			sd.CreatedAt = now
			sd.UpdatedAt = now
			sd.CSRFToken = newCSRFToken()
			sd.dirty = true
		}
		ctx := context.WithValue(r.Context(), ctxKeySession, sd)
		rw := NewResponseRecorder(w)
		rw.SetBeforeWrite(func(w http.ResponseWriter) {
			if sd.dirty || !fromCookie {
				writeSessionCookie(w, sd)
			}
		})
		next.ServeHTTP(rw, r.WithContext(ctx))
		// bodyless responses (HEAD, 204) never trip the write hook
		if !rw.Wrote() && (sd.dirty || !fromCookie) {
			writeSessionCookie(w, sd)
		}
	})
}

// GetSession returns the session from the request context. A request that
// bypassed the middleware gets an empty, unsaved session.
func GetSession(r *http.Request) *SessionData {
	if sd, ok := r.Context().Value(ctxKeySession).(*SessionData); ok {
		return sd
	}
	return &SessionData{}
}

// MarkDirty flags the session for rewriting at the end of the request.
func (s *SessionData) MarkDirty() {
	s.dirty = true
	s.UpdatedAt = time.Now().UTC()
}

// readSessionCookie parses and verifies the payload.signature cookie value.
// Any malformed or tampered cookie yields a fresh session.
func readSessionCookie(r *http.Request) (*SessionData, bool) {
	c, err := r.Cookie(sessionCookieName)
	if err != nil || c.Value == "" {
		return &SessionData{}, false
	}
	payload, sig, ok := strings.Cut(c.Value, ".")
	if !ok {
		return &SessionData{}, false
	}
	payloadB, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return &SessionData{}, false
	}
	sigB, err := base64.RawURLEncoding.DecodeString(sig)
	if err != nil {
		return &SessionData{}, false
	}
	if !hmac.Equal(sigB, sign(payloadB)) {
		return &SessionData{}, false
	}
	var sd SessionData
	if err := json.Unmarshal(payloadB, &sd); err != nil {
		return &SessionData{}, false
	}
	return &sd, true
}

func writeSessionCookie(w http.ResponseWriter, sd *SessionData) {
	b, _ := json.Marshal(sd)
	val := base64.RawURLEncoding.EncodeToString(b) + "." + base64.RawURLEncoding.EncodeToString(sign(b))
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    val,
		Path:     "/",
		HttpOnly: true,
		Secure:   sessionSecure,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(sessionLifetime),
	})
}

func sign(payload []byte) []byte {
	mac := hmac.New(sha256.New, sessionSignKey)
	mac.Write(payload)
	return mac.Sum(nil)
}

func randID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
