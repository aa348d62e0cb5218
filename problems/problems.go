package problems

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	htmlrenderer "github.com/yuin/goldmark/renderer/html"
	"gorm.io/gorm"

	"respostas/auth"
	"respostas/common"
	"respostas/models"
)

type ProblemsModule struct {
	db *gorm.DB
}

// markdown renderer configured with Goldmark and useful extensions
var md = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,     // tables, strikethrough, task lists, autolinks (GFM set)
		extension.Linkify, // linkify raw URLs
	),
	goldmark.WithRendererOptions(
		htmlrenderer.WithUnsafe(), // allow raw HTML passthrough in Markdown
	),
)

func NewProblemsModule(db *gorm.DB) *ProblemsModule {
	return &ProblemsModule{db: db}
}

func (p *ProblemsModule) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("/problemas", p.list)
	group.POST("/problemas", p.create)
	group.PUT("/problemas/:id", p.update)
	group.DELETE("/problemas/:id", p.delete)
	group.POST("/problemas/reordenar", p.reorder)
}

// All carrega os problemas do usuário já normalizados, na ordem da lista.
func (p *ProblemsModule) All(userID int) ([]models.Problem, error) {
	var probs []models.Problem
	err := p.db.Where("user_id = ?", userID).
		Order("item_order ASC, created_at ASC").
		Find(&probs).Error
	if err != nil {
		return nil, err
	}

	for i := range probs {
		Normalize(&probs[i])
	}
	return probs, nil
}

func (p *ProblemsModule) list(c *gin.Context) {
	userID := auth.CurrentUserID(c)

	probs, err := p.All(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao carregar problemas"})
		return
	}

	if q := c.Query("q"); q != "" {
		filtered := probs[:0]
		for _, prob := range probs {
			if common.ContainsFold(SearchText(&prob), q) {
				filtered = append(filtered, prob)
			}
		}
		probs = filtered
	}

	c.JSON(http.StatusOK, gin.H{
		"problems": probs,
		"count":    len(probs),
	})
}

type problemRequest struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Tags        []string          `json:"tags"`
	Solutions   []models.Solution `json:"solutions"`
}

func (p *ProblemsModule) validate(request *problemRequest) string {
	if strings.TrimSpace(request.Title) == "" {
		return "O título do problema é obrigatório"
	}

	hasSolution := false
	for i := range request.Solutions {
		sol := &request.Solutions[i]
		if common.StripTags(sol.Text) == "" {
			continue
		}
		hasSolution = true
		if sol.Label == "" {
			sol.Label = "Solução " + strconv.Itoa(i+1)
		}
		switch sol.Status {
		case "":
			sol.Status = "confirmado"
		case "confirmado", "teste", "obsoleto":
		default:
			return "Status de solução inválido: " + sol.Status
		}
	}
	if !hasSolution {
		return "A solução é obrigatória"
	}
	return ""
}

func (p *ProblemsModule) create(c *gin.Context) {
	userID := auth.CurrentUserID(c)

	var request problemRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dados inválidos"})
		return
	}

	if msg := p.validate(&request); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	prob := models.Problem{
		UserID:      userID,
		Title:       request.Title,
		Description: request.Description,
		Tags:        cleanTags(request.Tags),
		Solutions:   request.Solutions,
		ItemOrder:   common.NextOrder(p.db, &models.Problem{}, userID),
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if err := p.db.Create(&prob).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao salvar o problema"})
		return
	}

	c.JSON(http.StatusCreated, prob)
}

func (p *ProblemsModule) update(c *gin.Context) {
	userID := auth.CurrentUserID(c)
	probID := c.Param("id")

	var prob models.Problem
	if err := p.db.Where("id = ? AND user_id = ?", probID, userID).First(&prob).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Problema não encontrado"})
		return
	}

	var request problemRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dados inválidos"})
		return
	}

	if msg := p.validate(&request); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	prob.Title = request.Title
	prob.Description = request.Description
	prob.Tags = cleanTags(request.Tags)
	prob.Solutions = request.Solutions
	prob.Solution = "" // formato antigo nunca volta depois de editar
	prob.UpdatedAt = time.Now()

	if err := p.db.Save(&prob).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao atualizar o problema"})
		return
	}

	c.JSON(http.StatusOK, prob)
}

// delete é definitivo: problemas não passam pela lixeira.
func (p *ProblemsModule) delete(c *gin.Context) {
	userID := auth.CurrentUserID(c)

	probID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID inválido"})
		return
	}

	result := p.db.Where("id = ? AND user_id = ?", probID, userID).Delete(&models.Problem{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao excluir o problema"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Problema não encontrado"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Problema excluído com sucesso"})
}

type reorderRequest struct {
	IDs []int `json:"ids"`
}

func (p *ProblemsModule) reorder(c *gin.Context) {
	userID := auth.CurrentUserID(c)

	var request reorderRequest
	if err := c.ShouldBindJSON(&request); err != nil || len(request.IDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dados inválidos"})
		return
	}

	if err := common.PersistOrder(p.db, &models.Problem{}, userID, request.IDs); err != nil {
		if err == common.ErrForaDaColecao {
			c.JSON(http.StatusConflict, gin.H{"error": "A lista mudou. Recarregue e tente de novo."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao salvar a ordenação"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func cleanTags(tags []string) []string {
	var out []string
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

// RenderSolutionHTML converte o texto de uma solução em HTML para a tela.
func RenderSolutionHTML(text string) string {
	var buf bytes.Buffer
	if err := md.Convert([]byte(text), &buf); err != nil {
		// Em caso de erro, retorna o conteúdo original para não quebrar a página
		return text
	}
	return buf.String()
}

// SearchText devolve o texto pesquisável de um problema: título, descrição,
// tags e as soluções sem marcação.
func SearchText(p *models.Problem) string {
	parts := []string{p.Title, p.Description, strings.Join(p.Tags, " ")}
	for _, sol := range p.Solutions {
		parts = append(parts, common.StripTags(sol.Text))
	}
	return strings.Join(parts, " ")
}
