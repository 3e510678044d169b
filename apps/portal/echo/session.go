package echoportal

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"golang.org/x/crypto/nacl/secretbox"

	"github.com/trezcool/ripoti/core"
	"github.com/trezcool/ripoti/core/user"
)

const (
	sessionCookie = "ripoti_session"
	flashCookie   = "ripoti_flash"
	confirmCookie = "ripoti_confirm"
	nonceCookie   = "ripoti_nonce"

	contextSessionKey = "session"
)

var errNoSession = errors.New("session not found in echo.Context")

// sessionCodec seals the Session into a tamper-proof cookie value with
// nacl/secretbox. The bearer token inside stays opaque: sealing only keeps it
// from being read or forged client-side, it grants nothing by itself.
type sessionCodec struct {
	key [32]byte
	ttl time.Duration
}

func newSessionCodec(conf *core.Config) *sessionCodec {
	return &sessionCodec{
		key: sha256.Sum256([]byte(conf.SecretKey)),
		ttl: conf.SessionTTL,
	}
}

func (sc *sessionCodec) seal(sess user.Session) (string, error) {
	msg, err := json.Marshal(sess)
	if err != nil {
		return "", errors.Wrap(err, "encoding session")
	}
	var nonce [24]byte
	if _, err = rand.Read(nonce[:]); err != nil {
		// no entropy means no session can ever be minted; stop the process
		return "", core.NewShutdownError("generating session nonce: " + err.Error())
	}
	sealed := secretbox.Seal(nonce[:], msg, &nonce, &sc.key)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

func (sc *sessionCodec) open(value string) (user.Session, error) {
	var sess user.Session
	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil || len(raw) <= 24 {
		return sess, errors.New("malformed session cookie")
	}
	var nonce [24]byte
	copy(nonce[:], raw[:24])
	msg, ok := secretbox.Open(nil, raw[24:], &nonce, &sc.key)
	if !ok {
		return sess, errors.New("session cookie failed to open")
	}
	if err = json.Unmarshal(msg, &sess); err != nil {
		return sess, errors.Wrap(err, "decoding session")
	}
	return sess, nil
}

func (sc *sessionCodec) set(c echo.Context, sess user.Session) error {
	value, err := sc.seal(sess)
	if err != nil {
		return err
	}
	c.SetCookie(&http.Cookie{
		Name:     sessionCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   int(sc.ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (sc *sessionCodec) clear(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (sc *sessionCodec) get(c echo.Context) (user.Session, error) {
	cookie, err := c.Cookie(sessionCookie)
	if err != nil {
		return user.Session{}, err
	}
	return sc.open(cookie.Value)
}

// sessionRequired guards a role's shell: without a session of that exact role
// the request bounces to the login page. Data-level authorization remains the
// remote API's job.
func (s *Server) sessionRequired(role user.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess, err := s.sessions.get(c)
			if err != nil || sess.Role != role {
				return c.Redirect(http.StatusFound, "/")
			}
			c.Set(contextSessionKey, sess)
			return next(c)
		}
	}
}

func getContextSession(c echo.Context) (user.Session, error) {
	if sess, ok := c.Get(contextSessionKey).(user.Session); ok {
		return sess, nil
	}
	return user.Session{}, errNoSession
}

// Flash messages: a transient, non-blocking banner carried across one
// redirect via a short-lived cookie.

type flash struct {
	Level   string // "success" | "error"
	Message string
}

func setFlash(c echo.Context, level, msg string) {
	c.SetCookie(&http.Cookie{
		Name:     flashCookie,
		Value:    url.QueryEscape(level + "|" + msg),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func flashSuccess(c echo.Context, msg string) { setFlash(c, "success", msg) }
func flashError(c echo.Context, msg string)   { setFlash(c, "error", msg) }

// popFlash reads and clears the pending flash, if any.
func popFlash(c echo.Context) *flash {
	cookie, err := c.Cookie(flashCookie)
	if err != nil {
		return nil
	}
	c.SetCookie(&http.Cookie{Name: flashCookie, Value: "", Path: "/", MaxAge: -1})

	value, err := url.QueryUnescape(cookie.Value)
	if err != nil {
		return nil
	}
	parts := strings.SplitN(value, "|", 2)
	if len(parts) != 2 || parts[1] == "" {
		return nil
	}
	return &flash{Level: parts[0], Message: parts[1]}
}

// Destructive actions are a two-step state transition: the confirmation page
// (pending-confirmation) issues a one-time token that the confirming POST
// must echo back; anything else cancels.

func newConfirmToken(c echo.Context) string {
	token := uuid.New().String()
	c.SetCookie(&http.Cookie{
		Name:     confirmCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return token
}

func confirmTokenValid(c echo.Context) bool {
	cookie, err := c.Cookie(confirmCookie)
	if err != nil || cookie.Value == "" {
		return false
	}
	c.SetCookie(&http.Cookie{Name: confirmCookie, Value: "", Path: "/", MaxAge: -1})
	return c.FormValue("confirm") == cookie.Value
}

// Form nonces make the submit button single-shot: a resubmitted or replayed
// form carries a spent nonce and is dropped instead of hitting the API twice.

func newFormNonce(c echo.Context) string {
	nonce := uuid.New().String()
	c.SetCookie(&http.Cookie{
		Name:     nonceCookie,
		Value:    nonce,
		Path:     "/",
		MaxAge:   3600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nonce
}

func formNonceValid(c echo.Context) bool {
	cookie, err := c.Cookie(nonceCookie)
	if err != nil || cookie.Value == "" {
		return false
	}
	c.SetCookie(&http.Cookie{Name: nonceCookie, Value: "", Path: "/", MaxAge: -1})
	return c.FormValue("nonce") == cookie.Value
}
