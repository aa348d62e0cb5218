package links

import (
	"errors"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"respostas/auth"
	"respostas/common"
	"respostas/models"
)

type LinksModule struct {
	db *gorm.DB
}

func NewLinksModule(db *gorm.DB) *LinksModule {
	return &LinksModule{db: db}
}

func (l *LinksModule) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("/links", l.list)
	group.POST("/links", l.create)
	group.PUT("/links/:id", l.update)
	group.DELETE("/links/:id", l.delete)
	group.POST("/links/reordenar", l.reorder)
}

// All carrega os links do usuário agrupáveis por categoria: categoria,
// depois a ordem manual, depois a data.
func (l *LinksModule) All(userID int) ([]models.Link, error) {
	var items []models.Link
	err := l.db.Where("user_id = ?", userID).
		Order("category ASC, item_order ASC, created_at ASC").
		Find(&items).Error
	return items, err
}

// Group é um bloco de links de uma mesma categoria, na ordem de exibição.
type Group struct {
	Category string        `json:"category"`
	Links    []models.Link `json:"links"`
}

// GroupByCategory preserva a ordem de All e só quebra por categoria.
func GroupByCategory(items []models.Link) []Group {
	var groups []Group
	for _, item := range items {
		if len(groups) == 0 || groups[len(groups)-1].Category != item.Category {
			groups = append(groups, Group{Category: item.Category})
		}
		last := &groups[len(groups)-1]
		last.Links = append(last.Links, item)
	}
	return groups
}

func (l *LinksModule) list(c *gin.Context) {
	userID := auth.CurrentUserID(c)

	items, err := l.All(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao carregar links"})
		return
	}

	if q := c.Query("q"); q != "" {
		filtered := items[:0]
		for _, item := range items {
			if common.ContainsFold(item.Title+" "+item.URL+" "+item.Category, q) {
				filtered = append(filtered, item)
			}
		}
		items = filtered
	}

	c.JSON(http.StatusOK, gin.H{
		"groups": GroupByCategory(items),
		"count":  len(items),
	})
}

type linkRequest struct {
	URL      string `json:"url"`
	Title    string `json:"title"`
	Category string `json:"category"`
}

func (l *LinksModule) create(c *gin.Context) {
	userID := auth.CurrentUserID(c)

	var request linkRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dados inválidos"})
		return
	}

	normalized, err := NormalizeURL(request.URL)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	title := strings.TrimSpace(request.Title)
	if title == "" {
		title = ExtractDomain(normalized)
	}
	category := strings.TrimSpace(request.Category)
	if category == "" {
		category = "Geral"
	}

	item := models.Link{
		UserID:    userID,
		URL:       normalized,
		Title:     title,
		Category:  category,
		ItemOrder: common.NextOrder(l.db, &models.Link{}, userID),
		CreatedAt: time.Now(),
	}

	if err := l.db.Create(&item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao salvar o link"})
		return
	}

	c.JSON(http.StatusCreated, item)
}

func (l *LinksModule) update(c *gin.Context) {
	userID := auth.CurrentUserID(c)
	linkID := c.Param("id")

	var item models.Link
	if err := l.db.Where("id = ? AND user_id = ?", linkID, userID).First(&item).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Link não encontrado"})
		return
	}

	var request linkRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dados inválidos"})
		return
	}

	normalized, err := NormalizeURL(request.URL)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item.URL = normalized
	if title := strings.TrimSpace(request.Title); title != "" {
		item.Title = title
	}
	if category := strings.TrimSpace(request.Category); category != "" {
		item.Category = category
	}

	if err := l.db.Save(&item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao atualizar o link"})
		return
	}

	c.JSON(http.StatusOK, item)
}

// delete é definitivo: links não passam pela lixeira.
func (l *LinksModule) delete(c *gin.Context) {
	userID := auth.CurrentUserID(c)

	linkID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID inválido"})
		return
	}

	result := l.db.Where("id = ? AND user_id = ?", linkID, userID).Delete(&models.Link{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao remover o link"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Link não encontrado"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Link removido com sucesso"})
}

type reorderRequest struct {
	IDs []int `json:"ids"`
}

func (l *LinksModule) reorder(c *gin.Context) {
	userID := auth.CurrentUserID(c)

	var request reorderRequest
	if err := c.ShouldBindJSON(&request); err != nil || len(request.IDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dados inválidos"})
		return
	}

	if err := common.PersistOrder(l.db, &models.Link{}, userID, request.IDs); err != nil {
		if err == common.ErrForaDaColecao {
			c.JSON(http.StatusConflict, gin.H{"error": "A lista mudou. Recarregue e tente de novo."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao salvar a ordenação"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

var (
	errURLObrigatoria = errors.New("A URL é obrigatória")
	errURLInvalida    = errors.New("URL inválida. Verifique e tente novamente.")
)

var schemeRe = regexp.MustCompile(`(?i)^https?://`)

// NormalizeURL completa o esquema quando ausente e valida a URL.
func NormalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errURLObrigatoria
	}

	if !schemeRe.MatchString(raw) {
		raw = "https://" + raw
	}

	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		return "", errURLInvalida
	}

	return raw, nil
}

// ExtractDomain devolve o host sem o prefixo www, usado como título padrão.
func ExtractDomain(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		return raw
	}
	return strings.TrimPrefix(parsed.Host, "www.")
}
