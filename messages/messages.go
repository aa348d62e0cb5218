package messages

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"respostas/auth"
	"respostas/common"
	"respostas/models"
)

type MessagesModule struct {
	db *gorm.DB
}

func NewMessagesModule(db *gorm.DB) *MessagesModule {
	return &MessagesModule{db: db}
}

// RegisterRoutes registra as rotas de mensagens num grupo já autenticado.
func (m *MessagesModule) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("/mensagens", m.list)
	group.POST("/mensagens", m.create)
	group.PUT("/mensagens/:id", m.update)
	group.DELETE("/mensagens/:id", m.softDelete)
	group.POST("/mensagens/reordenar", m.reorder)
	group.GET("/mensagens/lixeira", m.trash)
	group.POST("/mensagens/:id/restaurar", m.restore)
	group.POST("/mensagens/lixeira/esvaziar", m.emptyTrash)
	group.POST("/mensagens/importar", m.importFile)
	group.GET("/mensagens/exportar.txt", m.exportTxt)
	group.GET("/mensagens/exportar.json", m.exportJSON)
}

// Active carrega as mensagens ativas do usuário na ordem visual da lista.
func (m *MessagesModule) Active(userID int) ([]models.Message, error) {
	var msgs []models.Message
	err := m.db.Where("user_id = ? AND deleted = ?", userID, false).
		Order("item_order ASC, created_at ASC").
		Find(&msgs).Error
	return msgs, err
}

// TrashCount conta as mensagens na lixeira, valor do badge da interface.
func (m *MessagesModule) TrashCount(userID int) int64 {
	var count int64
	m.db.Model(&models.Message{}).
		Where("user_id = ? AND deleted = ?", userID, true).
		Count(&count)
	return count
}

func (m *MessagesModule) list(c *gin.Context) {
	userID := auth.CurrentUserID(c)

	msgs, err := m.Active(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao carregar mensagens"})
		return
	}

	// Filtro local: substring sem diferenciar maiúsculas, sobre os campos visíveis
	if q := c.Query("q"); q != "" {
		filtered := msgs[:0]
		for _, msg := range msgs {
			if common.ContainsFold(msg.Title+" "+msg.Text+" "+msg.Category, q) {
				filtered = append(filtered, msg)
			}
		}
		msgs = filtered
	}

	c.JSON(http.StatusOK, gin.H{
		"messages":    msgs,
		"count":       len(msgs),
		"trash_count": m.TrashCount(userID),
	})
}

type messageRequest struct {
	Text     string `json:"text"`
	Title    string `json:"title"`
	Category string `json:"category"`
}

func (m *MessagesModule) create(c *gin.Context) {
	userID := auth.CurrentUserID(c)

	var request messageRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dados inválidos"})
		return
	}

	if common.NormalizeText(request.Text) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "O texto da mensagem é obrigatório"})
		return
	}

	if request.Category == "" {
		request.Category = "Geral"
	}

	msg := models.Message{
		UserID:    userID,
		Text:      request.Text,
		Title:     request.Title,
		Category:  request.Category,
		ItemOrder: common.NextOrder(m.db, &models.Message{}, userID),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := m.db.Create(&msg).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao salvar mensagem"})
		return
	}

	c.JSON(http.StatusCreated, msg)
}

func (m *MessagesModule) update(c *gin.Context) {
	userID := auth.CurrentUserID(c)
	msgID := c.Param("id")

	var msg models.Message
	if err := m.db.Where("id = ? AND user_id = ?", msgID, userID).First(&msg).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Mensagem não encontrada"})
		return
	}

	var request messageRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dados inválidos"})
		return
	}

	if common.NormalizeText(request.Text) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "O texto da mensagem é obrigatório"})
		return
	}

	msg.Text = request.Text
	msg.Title = request.Title
	if request.Category != "" {
		msg.Category = request.Category
	}
	msg.UpdatedAt = time.Now()

	if err := m.db.Save(&msg).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao atualizar mensagem"})
		return
	}

	c.JSON(http.StatusOK, msg)
}

// softDelete move a mensagem para a lixeira em vez de apagar de verdade.
func (m *MessagesModule) softDelete(c *gin.Context) {
	userID := auth.CurrentUserID(c)

	msgID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID inválido"})
		return
	}

	now := time.Now()
	result := m.db.Model(&models.Message{}).
		Where("id = ? AND user_id = ? AND deleted = ?", msgID, userID, false).
		Updates(map[string]interface{}{"deleted": true, "deleted_at": &now})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao excluir mensagem"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Mensagem não encontrada"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Mensagem movida para a lixeira",
		"trash_count": m.TrashCount(userID),
	})
}

type reorderRequest struct {
	IDs []int `json:"ids"`
}

// reorder persiste a sequência final do arrasto: item_order = posição+1,
// num único lote atômico.
func (m *MessagesModule) reorder(c *gin.Context) {
	userID := auth.CurrentUserID(c)

	var request reorderRequest
	if err := c.ShouldBindJSON(&request); err != nil || len(request.IDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dados inválidos"})
		return
	}

	if err := common.PersistOrder(m.db, &models.Message{}, userID, request.IDs); err != nil {
		if err == common.ErrForaDaColecao {
			c.JSON(http.StatusConflict, gin.H{"error": "A lista mudou. Recarregue e tente de novo."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao salvar a ordenação"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (m *MessagesModule) trash(c *gin.Context) {
	userID := auth.CurrentUserID(c)

	var msgs []models.Message
	if err := m.db.Where("user_id = ? AND deleted = ?", userID, true).
		Order("deleted_at DESC").
		Find(&msgs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao carregar lixeira"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"messages":    msgs,
		"trash_count": len(msgs),
	})
}

func (m *MessagesModule) restore(c *gin.Context) {
	userID := auth.CurrentUserID(c)

	msgID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID inválido"})
		return
	}

	result := m.db.Model(&models.Message{}).
		Where("id = ? AND user_id = ? AND deleted = ?", msgID, userID, true).
		Updates(map[string]interface{}{"deleted": false, "deleted_at": nil})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao restaurar mensagem"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Mensagem não encontrada na lixeira"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Mensagem restaurada",
		"trash_count": m.TrashCount(userID),
	})
}

type emptyTrashRequest struct {
	Confirmar bool `json:"confirmar"`
}

// emptyTrash apaga em definitivo todas as mensagens da lixeira. Irreversível,
// por isso exige confirmação explícita no corpo da requisição.
func (m *MessagesModule) emptyTrash(c *gin.Context) {
	userID := auth.CurrentUserID(c)

	var request emptyTrashRequest
	if err := c.ShouldBindJSON(&request); err != nil || !request.Confirmar {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Esvaziar a lixeira é permanente. Envie confirmar=true."})
		return
	}

	result := m.db.Where("user_id = ? AND deleted = ?", userID, true).
		Delete(&models.Message{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao esvaziar lixeira"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Lixeira esvaziada",
		"purged":      result.RowsAffected,
		"trash_count": 0,
	})
}
