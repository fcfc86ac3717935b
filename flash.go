package genview

import (
	"context"
	"errors"
	"html"
	"io"
	"net/http"
	"strings"

	"github.com/a-h/templ"

	"github.com/pthm/genview/lib/encoding"
)

// Flash levels for notifications.
const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashWarning = "warning"
	FlashInfo    = "info"
)

// Flash is a one-time notification message.
//
// Views emit flashes through the request's Notifier. When the response is a
// redirect the registry carries them to the next request in a signed cookie,
// where templates find them under the "messages" context key. HTMX renders
// get them inline as out-of-band toasts.
type Flash struct {
	Level   string `msgpack:"l"`
	Message string `msgpack:"m"`
}

// Flashes collects the flashes emitted during one dispatch. It implements
// Notifier and is never shared between requests.
type Flashes struct {
	list []Flash
}

// Notify records a flash.
func (f *Flashes) Notify(level, message string) {
	f.list = append(f.list, Flash{Level: level, Message: message})
}

// List returns the recorded flashes in emission order.
func (f *Flashes) List() []Flash {
	if len(f.list) == 0 {
		return nil
	}
	out := make([]Flash, len(f.list))
	copy(out, f.list)
	return out
}

// RenderFlashesOOB renders flashes as an HTMX out-of-band swap appending to
// the #toasts container. The data-auto-dismiss delay is in milliseconds.
func RenderFlashesOOB(flashes []Flash) string {
	if len(flashes) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(`<div id="toasts" hx-swap-oob="beforeend">`)
	for _, f := range flashes {
		sb.WriteString(`<div class="toast toast-`)
		sb.WriteString(html.EscapeString(f.Level))
		sb.WriteString(`" data-auto-dismiss="3000">`)
		sb.WriteString(html.EscapeString(f.Message))
		sb.WriteString(`</div>`)
	}
	sb.WriteString(`</div>`)
	return sb.String()
}

// ToastContainer returns the container targeted by OOB flash swaps. Place
// it once in the page layout.
func ToastContainer() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<div id="toasts" class="toast-container"></div>`)
		return err
	})
}

// DefaultFlashCookie is the cookie name used by FlashStore.
const DefaultFlashCookie = "genview_flash"

// FlashStore keeps flashes across a redirect in a signed cookie.
type FlashStore struct {
	enc     *encoding.Encoder
	name    string
	encrypt bool
}

// NewFlashStore creates a cookie flash store signing with key.
func NewFlashStore(key []byte, cookieName string) (*FlashStore, error) {
	enc, err := encoding.NewEncoder(key)
	if err != nil {
		return nil, err
	}
	if cookieName == "" {
		cookieName = DefaultFlashCookie
	}
	return &FlashStore{enc: enc, name: cookieName}, nil
}

// Encrypted makes the cookie opaque instead of only tamper-proof.
func (s *FlashStore) Encrypted() *FlashStore {
	s.encrypt = true
	return s
}

// Save writes flashes to the response cookie. An empty list writes nothing.
func (s *FlashStore) Save(w http.ResponseWriter, flashes []Flash) error {
	if len(flashes) == 0 {
		return nil
	}
	value, err := s.enc.Encode(flashes, s.encrypt)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Read returns the pending flashes. present reports whether the cookie was
// sent at all, so callers know whether it needs clearing.
func (s *FlashStore) Read(r *http.Request) (flashes []Flash, present bool, err error) {
	cookie, err := r.Cookie(s.name)
	if err != nil || cookie.Value == "" {
		return nil, false, nil
	}
	if err := s.enc.Decode(cookie.Value, s.encrypt, &flashes); err != nil {
		return nil, true, wrapEncodingError(err)
	}
	return flashes, true, nil
}

// Clear expires the flash cookie.
func (s *FlashStore) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Pop reads the pending flashes and expires the cookie. A missing cookie
// yields no flashes and no error; a tampered one is expired and reported.
func (s *FlashStore) Pop(w http.ResponseWriter, r *http.Request) ([]Flash, error) {
	flashes, present, err := s.Read(r)
	if present {
		s.Clear(w)
	}
	return flashes, err
}

// wrapEncodingError maps cookie codec errors onto the genview sentinels.
func wrapEncodingError(err error) error {
	switch {
	case errors.Is(err, encoding.ErrInvalidFormat):
		return ErrInvalidFormat
	case errors.Is(err, encoding.ErrSignatureInvalid):
		return ErrSignatureInvalid
	case errors.Is(err, encoding.ErrDecryptFailed):
		return ErrDecryptFailed
	}
	return err
}
