package admin

import (
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"respostas/auth"
	"respostas/models"
)

// Mailer envia o email de redefinição de senha (email.EmailService em produção).
type Mailer interface {
	SendPasswordResetEmail(to, token string) error
}

type AdminModule struct {
	db     *gorm.DB
	mailer Mailer
}

func NewAdminModule(db *gorm.DB, mailer Mailer) *AdminModule {
	return &AdminModule{db: db, mailer: mailer}
}

func (a *AdminModule) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("/", a.index)
	group.GET("/usuarios", a.listUsers)
	group.POST("/usuarios", a.createUser)
	group.POST("/usuarios/:id/bloquear", a.toggleBlocked)
	group.POST("/usuarios/:id/resetar-senha", a.sendReset)
	group.DELETE("/usuarios/:id", a.deleteUser)
}

func (a *AdminModule) index(c *gin.Context) {
	users, err := a.nonAdminUsers()
	if err != nil {
		c.HTML(http.StatusInternalServerError, "admin_error.html", gin.H{
			"error": "Erro ao carregar usuários",
		})
		return
	}

	c.HTML(http.StatusOK, "admin_users.html", gin.H{
		"username": c.GetString("username"),
		"users":    users,
	})
}

func (a *AdminModule) nonAdminUsers() ([]models.User, error) {
	var users []models.User
	err := a.db.Where("role <> ?", "admin").
		Order("created_at ASC").
		Find(&users).Error
	return users, err
}

func (a *AdminModule) listUsers(c *gin.Context) {
	users, err := a.nonAdminUsers()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao carregar usuários"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users, "count": len(users)})
}

type createUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (a *AdminModule) createUser(c *gin.Context) {
	var request createUserRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dados inválidos"})
		return
	}

	request.Username = strings.TrimSpace(request.Username)
	request.Email = strings.TrimSpace(request.Email)

	if request.Username == "" || request.Email == "" || request.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Preencha usuário, email e senha"})
		return
	}
	if len(request.Password) < 6 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A senha precisa ter ao menos 6 caracteres"})
		return
	}

	var existing models.User
	if err := a.db.Where("username = ?", request.Username).First(&existing).Error; err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Este usuário já está cadastrado"})
		return
	}
	if err := a.db.Where("email = ?", request.Email).First(&existing).Error; err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Este email já está cadastrado"})
		return
	}

	passwordHash, err := auth.HashPassword(request.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao criar conta"})
		return
	}

	user := models.User{
		Username:     request.Username,
		Email:        request.Email,
		PasswordHash: passwordHash,
		Role:         "user",
		Provider:     "senha",
		CreatedAt:    time.Now(),
	}

	if err := a.db.Create(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao criar conta"})
		return
	}

	c.JSON(http.StatusCreated, user)
}

// toggleBlocked inverte o bloqueio de uma conta que não seja de administrador.
// É também o caminho de aprovação das contas sombra criadas pelo login Google.
func (a *AdminModule) toggleBlocked(c *gin.Context) {
	user, ok := a.findManagedUser(c)
	if !ok {
		return
	}

	user.Blocked = !user.Blocked
	if err := a.db.Save(user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao atualizar conta"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": user.ID, "blocked": user.Blocked})
}

func (a *AdminModule) sendReset(c *gin.Context) {
	user, ok := a.findManagedUser(c)
	if !ok {
		return
	}

	token, err := auth.GenerateToken()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao gerar token de redefinição"})
		return
	}

	user.ResetToken = token
	if err := a.db.Save(user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao salvar token de redefinição"})
		return
	}

	if err := a.mailer.SendPasswordResetEmail(user.Email, token); err != nil {
		log.Printf("Erro ao enviar email de redefinição para %s: %v", user.Email, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Erro ao enviar email: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Email de redefinição enviado para " + user.Email})
}

// deleteUser apaga as subcoleções e depois a conta. As exclusões são
// sequenciais e sem transação: se uma falhar no meio, sobram órfãos que a
// varredura de limpeza recolhe depois.
func (a *AdminModule) deleteUser(c *gin.Context) {
	user, ok := a.findManagedUser(c)
	if !ok {
		return
	}

	steps := []interface{}{
		&models.Message{},
		&models.Problem{},
		&models.Link{},
		&models.UserPref{},
	}
	for _, model := range steps {
		if err := a.db.Where("user_id = ?", user.ID).Delete(model).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Erro ao excluir dados da conta. Tente de novo.",
			})
			return
		}
	}

	if err := a.db.Delete(user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao excluir conta"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Conta excluída com sucesso"})
}

// findManagedUser resolve o :id para uma conta não-admin ou responde o erro.
func (a *AdminModule) findManagedUser(c *gin.Context) (*models.User, bool) {
	userID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID inválido"})
		return nil, false
	}

	var user models.User
	if err := a.db.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Usuário não encontrado"})
		return nil, false
	}

	if user.Role == "admin" {
		c.JSON(http.StatusForbidden, gin.H{"error": "Contas de administrador não podem ser alteradas por aqui"})
		return nil, false
	}

	return &user, true
}

// SweepOrphans apaga subdocumentos cujo dono não existe mais, o passo de
// compensação para exclusões de conta que falharam no meio. Roda no boot.
func SweepOrphans(db *gorm.DB) error {
	orphanWhere := "user_id NOT IN (SELECT id FROM users)"

	for _, model := range []interface{}{
		&models.Message{},
		&models.Problem{},
		&models.Link{},
		&models.UserPref{},
	} {
		result := db.Where(orphanWhere).Delete(model)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			log.Printf("SweepOrphans: removed %d orphaned rows (%T)", result.RowsAffected, model)
		}
	}
	return nil
}
