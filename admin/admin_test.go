package admin

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"respostas/models"
)

type fakeMailer struct {
	sentTo    string
	sentToken string
	fail      error
}

func (f *fakeMailer) SendPasswordResetEmail(to, token string) error {
	if f.fail != nil {
		return f.fail
	}
	f.sentTo = to
	f.sentToken = token
	return nil
}

func setupTestDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}

	db.AutoMigrate(&models.User{}, &models.Message{}, &models.Problem{}, &models.Link{}, &models.UserPref{})
	return db
}

func setupTestRouter(adminModule *AdminModule) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	group := router.Group("/admin")
	group.Use(func(c *gin.Context) {
		c.Set("user_id", 1)
		c.Set("role", "admin")
		c.Set("username", "chefe")
		c.Next()
	})
	adminModule.RegisterRoutes(group)

	return router
}

func createTestUser(db *gorm.DB, username, role string, blocked bool) *models.User {
	user := &models.User{
		Username: username,
		Email:    username + "@x.com",
		Role:     role,
		Blocked:  blocked,
		Provider: "senha",
	}
	db.Create(user)
	return user
}

func doJSON(router *gin.Engine, method, path string, payload interface{}) *httptest.ResponseRecorder {
	var body bytes.Buffer
	if payload != nil {
		json.NewEncoder(&body).Encode(payload)
	}

	req, _ := http.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestListUsers_ExcludesAdmins(t *testing.T) {
	db := setupTestDB()
	router := setupTestRouter(NewAdminModule(db, &fakeMailer{}))

	createTestUser(db, "chefe", "admin", false)
	createTestUser(db, "ana", "user", false)
	createTestUser(db, "beto", "user", true)

	w := doJSON(router, "GET", "/admin/usuarios", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Users []models.User `json:"users"`
		Count int           `json:"count"`
	}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, 2, response.Count)
	for _, u := range response.Users {
		assert.NotEqual(t, "admin", u.Role)
	}
}

func TestCreateUser(t *testing.T) {
	db := setupTestDB()
	router := setupTestRouter(NewAdminModule(db, &fakeMailer{}))

	w := doJSON(router, "POST", "/admin/usuarios", gin.H{
		"username": "ana",
		"email":    "ana@x.com",
		"password": "secret1",
	})

	assert.Equal(t, http.StatusCreated, w.Code)

	var user models.User
	db.Where("username = ?", "ana").First(&user)
	assert.Equal(t, "user", user.Role)
	assert.False(t, user.Blocked)
	assert.NotEmpty(t, user.PasswordHash)
	// o hash nunca sai na resposta
	assert.NotContains(t, w.Body.String(), user.PasswordHash)
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	db := setupTestDB()
	router := setupTestRouter(NewAdminModule(db, &fakeMailer{}))
	createTestUser(db, "ana", "user", false)

	w := doJSON(router, "POST", "/admin/usuarios", gin.H{
		"username": "ana",
		"email":    "outra@x.com",
		"password": "secret1",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "já está cadastrado")
}

func TestCreateUser_ShortPassword(t *testing.T) {
	db := setupTestDB()
	router := setupTestRouter(NewAdminModule(db, &fakeMailer{}))

	w := doJSON(router, "POST", "/admin/usuarios", gin.H{
		"username": "ana",
		"email":    "ana@x.com",
		"password": "123",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestToggleBlocked(t *testing.T) {
	db := setupTestDB()
	router := setupTestRouter(NewAdminModule(db, &fakeMailer{}))
	user := createTestUser(db, "ana", "user", false)

	w := doJSON(router, "POST", "/admin/usuarios/"+itoa(user.ID)+"/bloquear", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var updated models.User
	db.First(&updated, user.ID)
	assert.True(t, updated.Blocked)

	// o mesmo endpoint aprova a conta de volta
	doJSON(router, "POST", "/admin/usuarios/"+itoa(user.ID)+"/bloquear", nil)
	db.First(&updated, user.ID)
	assert.False(t, updated.Blocked)
}

func TestToggleBlocked_AdminForbidden(t *testing.T) {
	db := setupTestDB()
	router := setupTestRouter(NewAdminModule(db, &fakeMailer{}))
	other := createTestUser(db, "outro-chefe", "admin", false)

	w := doJSON(router, "POST", "/admin/usuarios/"+itoa(other.ID)+"/bloquear", nil)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestSendReset(t *testing.T) {
	db := setupTestDB()
	mailer := &fakeMailer{}
	router := setupTestRouter(NewAdminModule(db, mailer))
	user := createTestUser(db, "ana", "user", false)

	w := doJSON(router, "POST", "/admin/usuarios/"+itoa(user.ID)+"/resetar-senha", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ana@x.com", mailer.sentTo)

	var updated models.User
	db.First(&updated, user.ID)
	assert.NotEmpty(t, updated.ResetToken)
	assert.Equal(t, updated.ResetToken, mailer.sentToken)
}

func TestSendReset_MailFailure(t *testing.T) {
	db := setupTestDB()
	mailer := &fakeMailer{fail: assert.AnError}
	router := setupTestRouter(NewAdminModule(db, mailer))
	user := createTestUser(db, "ana", "user", false)

	w := doJSON(router, "POST", "/admin/usuarios/"+itoa(user.ID)+"/resetar-senha", nil)

	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestDeleteUser_CascadesCollections(t *testing.T) {
	db := setupTestDB()
	router := setupTestRouter(NewAdminModule(db, &fakeMailer{}))

	user := createTestUser(db, "ana", "user", false)
	keeper := createTestUser(db, "beto", "user", false)

	db.Create(&models.Message{UserID: user.ID, Text: "Olá", ItemOrder: 1})
	db.Create(&models.Problem{UserID: user.ID, Title: "Erro X", ItemOrder: 1})
	db.Create(&models.Link{UserID: user.ID, URL: "https://x.com", Title: "X", ItemOrder: 1})
	db.Create(&models.UserPref{UserID: user.ID})
	db.Create(&models.Message{UserID: keeper.ID, Text: "Fica", ItemOrder: 1})

	w := doJSON(router, "DELETE", "/admin/usuarios/"+itoa(user.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var count int64
	db.Model(&models.User{}).Where("id = ?", user.ID).Count(&count)
	assert.Equal(t, int64(0), count)

	db.Model(&models.Message{}).Where("user_id = ?", user.ID).Count(&count)
	assert.Equal(t, int64(0), count)
	db.Model(&models.Problem{}).Where("user_id = ?", user.ID).Count(&count)
	assert.Equal(t, int64(0), count)
	db.Model(&models.Link{}).Where("user_id = ?", user.ID).Count(&count)
	assert.Equal(t, int64(0), count)

	// os dados de outras contas não são tocados
	db.Model(&models.Message{}).Where("user_id = ?", keeper.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestDeleteUser_NotFound(t *testing.T) {
	db := setupTestDB()
	router := setupTestRouter(NewAdminModule(db, &fakeMailer{}))

	w := doJSON(router, "DELETE", "/admin/usuarios/999", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSweepOrphans(t *testing.T) {
	db := setupTestDB()

	user := createTestUser(db, "ana", "user", false)
	db.Create(&models.Message{UserID: user.ID, Text: "Fica", ItemOrder: 1})
	db.Create(&models.Message{UserID: 999, Text: "Órfã", ItemOrder: 1})
	db.Create(&models.Link{UserID: 999, URL: "https://x.com", Title: "X", ItemOrder: 1})

	err := SweepOrphans(db)
	assert.NoError(t, err)

	var count int64
	db.Model(&models.Message{}).Where("user_id = ?", 999).Count(&count)
	assert.Equal(t, int64(0), count)
	db.Model(&models.Link{}).Where("user_id = ?", 999).Count(&count)
	assert.Equal(t, int64(0), count)
	db.Model(&models.Message{}).Where("user_id = ?", user.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func itoa(id int) string {
	return strconv.Itoa(id)
}
