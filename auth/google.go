package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
	"gorm.io/gorm"

	"respostas/models"
)

func googleOAuthConfig() *oauth2.Config {
	domain := os.Getenv("DOMAIN")
	if domain == "" {
		domain = "http://localhost:8080"
	}

	return &oauth2.Config{
		ClientID:     os.Getenv("GOOGLE_OAUTH_CLIENT_ID"),
		ClientSecret: os.Getenv("GOOGLE_OAUTH_CLIENT_SECRET"),
		RedirectURL:  domain + "/auth/google/callback",
		Scopes:       []string{"openid", "email", "profile"},
		Endpoint: oauth2.Endpoint{
			AuthURL:  "https://accounts.google.com/o/oauth2/auth",
			TokenURL: "https://oauth2.googleapis.com/token",
		},
	}
}

type googleUserInfo struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

func (a *AuthModule) googleRedirect(c *gin.Context) {
	conf := googleOAuthConfig()
	if conf.ClientID == "" {
		c.HTML(http.StatusServiceUnavailable, "auth_error.html", gin.H{
			"error": "Login com Google não está configurado",
		})
		return
	}

	state, err := GenerateToken()
	if err != nil {
		c.HTML(http.StatusInternalServerError, "auth_error.html", gin.H{
			"error": "Erro ao iniciar login com Google",
		})
		return
	}

	session := sessions.Default(c)
	session.Set("oauth_state", state)
	session.Save()

	c.Redirect(http.StatusFound, conf.AuthCodeURL(state))
}

func (a *AuthModule) googleCallback(c *gin.Context) {
	session := sessions.Default(c)
	savedState, _ := session.Get("oauth_state").(string)
	session.Delete("oauth_state")
	session.Save()

	if savedState == "" || c.Query("state") != savedState {
		c.HTML(http.StatusBadRequest, "auth_error.html", gin.H{
			"error": "Sessão de login inválida. Tente novamente.",
		})
		return
	}

	code := c.Query("code")
	if code == "" {
		c.HTML(http.StatusBadRequest, "auth_error.html", gin.H{
			"error": "Login com Google cancelado",
		})
		return
	}

	info, err := a.fetchGoogleUser(c.Request.Context(), code)
	if err != nil {
		log.Printf("Erro ao completar login com Google: %v", err)
		c.HTML(http.StatusBadGateway, "auth_error.html", gin.H{
			"error": "Erro ao falar com o Google. Tente novamente.",
		})
		return
	}

	var user models.User
	err = a.db.Where("email = ?", info.Email).First(&user).Error

	if err == gorm.ErrRecordNotFound {
		// Primeiro acesso: cria a conta sombra bloqueada e NÃO abre sessão.
		// Um administrador precisa desbloquear antes do primeiro login de fato.
		user = models.User{
			Username: a.uniqueUsername(info.Email),
			Email:    info.Email,
			Role:     "user",
			Blocked:  true,
			Provider: "google",
			PhotoURL: info.Picture,
		}
		if err := a.db.Create(&user).Error; err != nil {
			c.HTML(http.StatusInternalServerError, "auth_error.html", gin.H{
				"error": "Erro ao criar conta",
			})
			return
		}

		c.HTML(http.StatusOK, "auth_pending.html", gin.H{
			"username": user.Username,
		})
		return
	} else if err != nil {
		c.HTML(http.StatusInternalServerError, "auth_error.html", gin.H{
			"error": "Erro ao carregar conta",
		})
		return
	}

	if user.Blocked {
		c.HTML(http.StatusOK, "auth_pending.html", gin.H{
			"username": user.Username,
		})
		return
	}

	a.establishSession(c, &user)
	a.redirectByRole(c, user.Role)
}

func (a *AuthModule) fetchGoogleUser(ctx context.Context, code string) (*googleUserInfo, error) {
	conf := googleOAuthConfig()

	token, err := conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("erro ao trocar código por token: %w", err)
	}

	client := conf.Client(ctx, token)
	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar perfil: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("perfil respondeu %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("erro ao decodificar perfil: %w", err)
	}
	if info.Email == "" {
		return nil, fmt.Errorf("perfil sem email")
	}

	return &info, nil
}

// uniqueUsername deriva um nome de usuário da parte local do email,
// acrescentando um sufixo numérico quando já existir.
func (a *AuthModule) uniqueUsername(email string) string {
	base := strings.ToLower(strings.SplitN(email, "@", 2)[0])
	if base == "" {
		base = "usuario"
	}

	candidate := base
	for i := 2; ; i++ {
		var count int64
		a.db.Model(&models.User{}).Where("username = ?", candidate).Count(&count)
		if count == 0 {
			return candidate
		}
		candidate = fmt.Sprintf("%s%d", base, i)
	}
}
