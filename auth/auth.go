package auth

import (
	"crypto/rand"
	"encoding/base64"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"respostas/models"
)

type AuthModule struct {
	db *gorm.DB
}

func NewAuthModule(db *gorm.DB) *AuthModule {
	return &AuthModule{db: db}
}

func (a *AuthModule) RegisterRoutes(router *gin.Engine) {
	router.GET("/login", a.loginPage)
	router.POST("/login", a.loginPost)
	router.GET("/sair", a.logout)
	router.GET("/auth/google", a.googleRedirect)
	router.GET("/auth/google/callback", a.googleCallback)
	router.GET("/redefinir/:token", a.resetPage)
	router.POST("/redefinir/:token", a.resetPost)
}

// RequireAuth garante sessão ativa nas rotas do painel.
func RequireAuth(c *gin.Context) {
	session := sessions.Default(c)
	userID := session.Get("user_id")

	if userID == nil {
		c.Redirect(http.StatusFound, "/login")
		c.Abort()
		return
	}

	c.Set("user_id", userID)
	c.Set("role", session.Get("role"))
	c.Set("username", session.Get("username"))
	c.Next()
}

// RequireAdmin garante sessão ativa com papel de administrador.
func RequireAdmin(c *gin.Context) {
	session := sessions.Default(c)
	userID := session.Get("user_id")

	if userID == nil {
		c.Redirect(http.StatusFound, "/login")
		c.Abort()
		return
	}

	if role, _ := session.Get("role").(string); role != "admin" {
		c.HTML(http.StatusForbidden, "auth_error.html", gin.H{
			"error": "Acesso restrito a administradores",
		})
		c.Abort()
		return
	}

	c.Set("user_id", userID)
	c.Set("role", "admin")
	c.Set("username", session.Get("username"))
	c.Next()
}

// CurrentUserID devolve o id do usuário autenticado colocado no contexto.
func CurrentUserID(c *gin.Context) int {
	return c.GetInt("user_id")
}

func (a *AuthModule) loginPage(c *gin.Context) {
	session := sessions.Default(c)
	if session.Get("user_id") != nil {
		a.redirectByRole(c, session.Get("role"))
		return
	}

	c.HTML(http.StatusOK, "auth_login.html", gin.H{})
}

func (a *AuthModule) loginPost(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	if username == "" || password == "" {
		c.HTML(http.StatusBadRequest, "auth_login.html", gin.H{
			"error":    "Preencha usuário e senha",
			"username": username,
		})
		return
	}

	// O login é por nome de usuário: o diretório resolve para o email da conta
	var user models.User
	if err := a.db.Where("username = ?", username).First(&user).Error; err != nil {
		c.HTML(http.StatusUnauthorized, "auth_login.html", gin.H{
			"error":    "Usuário não encontrado",
			"username": username,
		})
		return
	}

	// Conta bloqueada nunca chega ao estado autenticado, mesmo com senha correta
	if user.Blocked {
		c.HTML(http.StatusUnauthorized, "auth_login.html", gin.H{
			"error":    "Conta bloqueada ou aguardando aprovação de um administrador",
			"username": username,
		})
		return
	}

	if !checkPasswordHash(password, user.PasswordHash) {
		c.HTML(http.StatusUnauthorized, "auth_login.html", gin.H{
			"error":    "Usuário ou senha inválidos",
			"username": username,
		})
		return
	}

	a.establishSession(c, &user)
	a.redirectByRole(c, user.Role)
}

func (a *AuthModule) establishSession(c *gin.Context, user *models.User) {
	session := sessions.Default(c)
	session.Set("user_id", user.ID)
	session.Set("role", user.Role)
	session.Set("username", user.Username)
	session.Save()
}

func (a *AuthModule) redirectByRole(c *gin.Context, role interface{}) {
	if r, _ := role.(string); r == "admin" {
		c.Redirect(http.StatusFound, "/admin")
		return
	}
	c.Redirect(http.StatusFound, "/app")
}

func (a *AuthModule) logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Save()

	c.Redirect(http.StatusFound, "/login")
}

func (a *AuthModule) resetPage(c *gin.Context) {
	token := c.Param("token")

	var user models.User
	if err := a.db.Where("reset_token = ? AND reset_token <> ''", token).First(&user).Error; err != nil {
		c.HTML(http.StatusNotFound, "auth_error.html", gin.H{
			"error": "Token inválido ou expirado",
		})
		return
	}

	c.HTML(http.StatusOK, "auth_reset.html", gin.H{
		"token":    token,
		"username": user.Username,
	})
}

func (a *AuthModule) resetPost(c *gin.Context) {
	token := c.Param("token")
	password := c.PostForm("password")

	var user models.User
	if err := a.db.Where("reset_token = ? AND reset_token <> ''", token).First(&user).Error; err != nil {
		c.HTML(http.StatusNotFound, "auth_error.html", gin.H{
			"error": "Token inválido ou expirado",
		})
		return
	}

	if len(password) < 6 {
		c.HTML(http.StatusBadRequest, "auth_reset.html", gin.H{
			"error": "A senha precisa ter ao menos 6 caracteres",
			"token": token,
		})
		return
	}

	passwordHash, err := HashPassword(password)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "auth_reset.html", gin.H{
			"error": "Erro ao redefinir senha",
			"token": token,
		})
		return
	}

	user.PasswordHash = passwordHash
	user.ResetToken = ""

	if err := a.db.Save(&user).Error; err != nil {
		c.HTML(http.StatusInternalServerError, "auth_reset.html", gin.H{
			"error": "Erro ao redefinir senha",
			"token": token,
		})
		return
	}

	c.Redirect(http.StatusFound, "/login")
}

// GenerateToken cria um token aleatório para redefinição de senha e OAuth state.
func GenerateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 14)
	return string(bytes), err
}

func checkPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
