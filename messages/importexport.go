package messages

import (
	"bufio"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"respostas/auth"
	"respostas/common"
	"respostas/models"
)

const (
	duplicatesReplace = "substituir"
	duplicatesSkip    = "ignorar"
)

// importFile importa um .txt com uma mensagem por linha. Linhas idênticas a
// mensagens já existentes (ativas OU na lixeira) são duplicatas; a decisão
// substituir/ignorar vale para o lote inteiro. Sem decisão e com duplicatas
// presentes, a resposta é 409 para que a interface pergunte uma única vez.
func (m *MessagesModule) importFile(c *gin.Context) {
	userID := auth.CurrentUserID(c)
	mode := c.PostForm("duplicados")

	if mode != "" && mode != duplicatesReplace && mode != duplicatesSkip {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Valor de duplicados inválido"})
		return
	}

	file, err := c.FormFile("arquivo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Envie um arquivo .txt"})
		return
	}

	reader, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Erro ao ler o arquivo"})
		return
	}
	defer reader.Close()

	var lines []string
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Erro ao ler o arquivo"})
		return
	}

	if len(lines) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "O arquivo não tem mensagens"})
		return
	}

	// Índice de duplicatas sobre TODAS as mensagens do usuário, inclusive as
	// da lixeira: um item excluído ainda conta como original.
	var existing []models.Message
	if err := m.db.Where("user_id = ?", userID).Find(&existing).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao carregar mensagens"})
		return
	}

	index := make(map[string]*models.Message, len(existing))
	for i := range existing {
		index[common.TextDigest(existing[i].Text)] = &existing[i]
	}

	var fresh []string
	duplicates := make(map[string]*models.Message)
	for _, line := range lines {
		digest := common.TextDigest(line)
		if original, ok := index[digest]; ok {
			duplicates[digest] = original
		} else {
			fresh = append(fresh, line)
		}
	}

	if len(duplicates) > 0 && mode == "" {
		c.JSON(http.StatusConflict, gin.H{
			"duplicates": len(duplicates),
			"message":    "Há mensagens repetidas. Envie duplicados=substituir ou duplicados=ignorar.",
		})
		return
	}

	replaced := 0
	if mode == duplicatesReplace {
		for _, original := range duplicates {
			updates := map[string]interface{}{
				"deleted":    false,
				"deleted_at": nil,
				"updated_at": time.Now(),
			}
			if err := m.db.Model(original).Updates(updates).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao restaurar duplicatas"})
				return
			}
			replaced++
		}
	}

	// Linhas inéditas sempre entram, no fim da lista
	nextOrder := common.NextOrder(m.db, &models.Message{}, userID)
	inserted := 0
	for _, line := range fresh {
		msg := models.Message{
			UserID:    userID,
			Text:      line,
			Category:  "Geral",
			ItemOrder: nextOrder,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
		if err := m.db.Create(&msg).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao importar mensagens"})
			return
		}
		nextOrder++
		inserted++
	}

	c.JSON(http.StatusOK, gin.H{
		"inserted":   inserted,
		"duplicates": len(duplicates),
		"replaced":   replaced,
		"skipped":    len(duplicates) - replaced,
	})
}

// exportTxt serializa as mensagens ativas, uma por linha. Importar o arquivo
// de volta reproduz o mesmo conjunto ativo.
func (m *MessagesModule) exportTxt(c *gin.Context) {
	userID := auth.CurrentUserID(c)

	msgs, err := m.Active(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao exportar mensagens"})
		return
	}

	var sb strings.Builder
	for _, msg := range msgs {
		sb.WriteString(msg.Text)
		sb.WriteString("\n")
	}

	c.Header("Content-Disposition", `attachment; filename="mensagens.txt"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(sb.String()))
}

func (m *MessagesModule) exportJSON(c *gin.Context) {
	userID := auth.CurrentUserID(c)

	msgs, err := m.Active(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao exportar mensagens"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="mensagens.json"`)
	c.JSON(http.StatusOK, msgs)
}
