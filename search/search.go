package search

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"respostas/auth"
	"respostas/common"
	"respostas/models"
	"respostas/problems"
)

// resultado máximo exibido por seção na busca global
const maxPerSection = 5

type SearchModule struct {
	db *gorm.DB
}

func NewSearchModule(db *gorm.DB) *SearchModule {
	return &SearchModule{db: db}
}

func (s *SearchModule) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("/busca", s.global)
}

type messageResult struct {
	ID   int    `json:"id"`
	Text string `json:"text"` // payload do botão de copiar
}

type problemResult struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// global busca ao mesmo tempo em mensagens e problemas do usuário logado.
// As coleções são lidas de novo a cada busca, não do que a tela já tinha.
func (s *SearchModule) global(c *gin.Context) {
	userID := auth.CurrentUserID(c)

	query := strings.TrimSpace(c.Query("q"))
	if len([]rune(query)) < 2 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Digite pelo menos 2 caracteres"})
		return
	}

	var msgs []models.Message
	if err := s.db.Where("user_id = ? AND deleted = ?", userID, false).
		Order("item_order ASC, created_at ASC").
		Find(&msgs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao buscar"})
		return
	}

	var probs []models.Problem
	if err := s.db.Where("user_id = ?", userID).
		Order("item_order ASC, created_at ASC").
		Find(&probs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao buscar"})
		return
	}

	var msgMatches []messageResult
	msgTotal := 0
	for _, msg := range msgs {
		if !common.ContainsFold(msg.Title+" "+msg.Text+" "+msg.Category, query) {
			continue
		}
		msgTotal++
		if len(msgMatches) < maxPerSection {
			msgMatches = append(msgMatches, messageResult{ID: msg.ID, Text: msg.Text})
		}
	}

	var probMatches []problemResult
	probTotal := 0
	for i := range probs {
		problems.Normalize(&probs[i])
		if !common.ContainsFold(problems.SearchText(&probs[i]), query) {
			continue
		}
		probTotal++
		if len(probMatches) < maxPerSection {
			probMatches = append(probMatches, problemResult{
				ID:          probs[i].ID,
				Title:       probs[i].Title,
				Description: probs[i].Description,
			})
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"messages":       msgMatches,
		"messages_total": msgTotal,
		"problems":       probMatches,
		"problems_total": probTotal,
	})
}
