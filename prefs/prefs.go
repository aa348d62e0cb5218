package prefs

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"respostas/auth"
	"respostas/models"
)

// PrefsModule guarda o estado de interface que vive fora das coleções:
// tema, modo compacto e mensagens favoritas. Uma linha por usuário, com
// ciclo de vida independente dos dados da conta.
type PrefsModule struct {
	db *gorm.DB
}

func NewPrefsModule(db *gorm.DB) *PrefsModule {
	return &PrefsModule{db: db}
}

func (p *PrefsModule) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("/prefs", p.get)
	group.PUT("/prefs", p.put)
}

// For devolve as preferências do usuário, criando a linha padrão na primeira leitura.
func (p *PrefsModule) For(userID int) (*models.UserPref, error) {
	var pref models.UserPref
	err := p.db.Where("user_id = ?", userID).First(&pref).Error
	if err == gorm.ErrRecordNotFound {
		pref = models.UserPref{UserID: userID, Theme: "claro", UpdatedAt: time.Now()}
		if err := p.db.Create(&pref).Error; err != nil {
			return nil, err
		}
		return &pref, nil
	}
	if err != nil {
		return nil, err
	}
	return &pref, nil
}

func (p *PrefsModule) get(c *gin.Context) {
	pref, err := p.For(auth.CurrentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao carregar preferências"})
		return
	}
	c.JSON(http.StatusOK, pref)
}

type prefsRequest struct {
	Theme     string `json:"theme"`
	Compact   bool   `json:"compact"`
	Favorites []int  `json:"favorites"`
}

func (p *PrefsModule) put(c *gin.Context) {
	pref, err := p.For(auth.CurrentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao carregar preferências"})
		return
	}

	var request prefsRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dados inválidos"})
		return
	}

	switch request.Theme {
	case "claro", "escuro":
		pref.Theme = request.Theme
	case "":
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Tema inválido"})
		return
	}

	pref.Compact = request.Compact
	pref.Favorites = request.Favorites
	pref.UpdatedAt = time.Now()

	if err := p.db.Save(pref).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao salvar preferências"})
		return
	}

	c.JSON(http.StatusOK, pref)
}
