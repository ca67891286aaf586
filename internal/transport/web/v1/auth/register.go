package auth

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/jnealey88/ctrl-alt-vibe-sub002/internal/domain"
	"github.com/jnealey88/ctrl-alt-vibe-sub002/internal/transport/web/logx"
	"github.com/jnealey88/ctrl-alt-vibe-sub002/internal/transport/web/mw"
	v1 "github.com/jnealey88/ctrl-alt-vibe-sub002/internal/transport/web/v1"
)

// HandlerRegister обрабатывает POST /api/register
type HandlerRegister struct {
	Log    *log.Logger
	Users  domain.UsersRepo
	Hasher domain.PasswordHasher
	Tokens domain.TokenManager
}

type registerRequest struct {
	Login string `json:"login"`
	Name  string `json:"name"`
	Pswd  string `json:"pswd"`
}

type registerResponse struct {
	Login string `json:"login"`
	Token string `json:"token"`
}

// Register godoc
// @Summary     Register new user
// @Description Открытая регистрация; сразу возвращает JWT новой сессии.
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body registerRequest true "login, name, pswd"
// @Success     200 {object} domain.APIEnvelope{response=registerResponse}
// @Failure     400 {object} domain.APIEnvelope
// @Failure     409 {object} domain.APIEnvelope
// @Failure     500 {object} domain.APIEnvelope
// @Router      /api/register [post]
func (h *HandlerRegister) Register(w http.ResponseWriter, r *http.Request) {
	const op = "auth.register"
	reqID := mw.RequestIDFromCtx(r.Context())
	logx.Info(h.Log, reqID, op, "start", "method", r.Method, "path", r.URL.Path)

	// Принимаем JSON, но поддержим и форму (на случай ручного теста).
	var req registerRequest
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logx.Error(h.Log, reqID, op, "bad json", err)
			v1.WriteDomainError(w, r, domain.ErrBadParams)
			return
		}
	} else {
		_ = r.ParseForm()
		req.Login = r.FormValue("login")
		req.Name = r.FormValue("name")
		req.Pswd = r.FormValue("pswd")
	}

	if !domain.ValidLogin(req.Login) || !domain.ValidPassword(req.Pswd) {
		logx.Error(h.Log, reqID, op, "validation failed", domain.ErrBadParams, "login", req.Login)
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}
	if req.Name == "" {
		req.Name = req.Login
	}

	hashStr, err := h.Hasher.Hash(req.Pswd)
	if err != nil {
		logx.Error(h.Log, reqID, op, "hash failed", err)
		v1.WriteDomainError(w, r, domain.ErrUnexpected)
		return
	}

	u, err := h.Users.CreateUser(r.Context(), req.Login, req.Name, []byte(hashStr))
	if err != nil {
		// уникальный конфликт по login отдаём как 409
		logx.Error(h.Log, reqID, op, "create user failed", err, "login", req.Login)
		v1.WriteDomainError(w, r, err)
		return
	}

	token, _, err := h.Tokens.Issue(r.Context(), u.ID, u.Login)
	if err != nil {
		logx.Error(h.Log, reqID, op, "issue token failed", err, "user_id", u.ID)
		v1.WriteDomainError(w, r, domain.ErrUnexpected)
		return
	}

	logx.Info(h.Log, reqID, op, "ok", "user_id", u.ID, "login", u.Login)
	v1.WriteOKResponse(w, r, registerResponse{Login: u.Login, Token: token})
}
