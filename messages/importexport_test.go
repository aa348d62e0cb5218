package messages

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"respostas/models"
)

func doImport(router *gin.Engine, content, mode string) *httptest.ResponseRecorder {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if mode != "" {
		writer.WriteField("duplicados", mode)
	}
	part, _ := writer.CreateFormFile("arquivo", "mensagens.txt")
	part.Write([]byte(content))
	writer.Close()

	req, _ := http.NewRequest("POST", "/app/mensagens/importar", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestImport_AsksOnceAboutDuplicates(t *testing.T) {
	db := setupTestDB()
	router := setupTestRouter(NewMessagesModule(db), 1)

	createTestMessage(db, 1, "Bom dia!", 1)

	w := doImport(router, "Bom dia!\nBoa tarde!\n", "")
	assert.Equal(t, http.StatusConflict, w.Code)

	var response struct {
		Duplicates int `json:"duplicates"`
	}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, 1, response.Duplicates)

	// sem decisão, nada entra
	var count int64
	db.Model(&models.Message{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestImport_SkipDuplicates(t *testing.T) {
	db := setupTestDB()
	module := NewMessagesModule(db)
	router := setupTestRouter(module, 1)

	// o original está na lixeira e ainda conta como duplicata
	original := createTestMessage(db, 1, "Bom dia!", 1)
	trashTestMessage(db, original)

	w := doImport(router, "Bom dia!\nBoa tarde!\nBoa noite!\n", duplicatesSkip)
	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Inserted int `json:"inserted"`
		Skipped  int `json:"skipped"`
	}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, 2, response.Inserted)
	assert.Equal(t, 1, response.Skipped)

	// ignorar não ressuscita o original
	var kept models.Message
	db.First(&kept, original.ID)
	assert.True(t, kept.Deleted)

	active, _ := module.Active(1)
	assert.Len(t, active, 2)
}

func TestImport_ReplaceRestoresTrashedOriginal(t *testing.T) {
	db := setupTestDB()
	module := NewMessagesModule(db)
	router := setupTestRouter(module, 1)

	original := createTestMessage(db, 1, "Bom dia!", 1)
	trashTestMessage(db, original)

	w := doImport(router, "Bom dia!\n", duplicatesReplace)
	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Inserted int `json:"inserted"`
		Replaced int `json:"replaced"`
	}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, 0, response.Inserted)
	assert.Equal(t, 1, response.Replaced)

	var restored models.Message
	db.First(&restored, original.ID)
	assert.False(t, restored.Deleted)
	assert.Nil(t, restored.DeletedAt)

	var count int64
	db.Model(&models.Message{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestImport_IgnoresBlankLines(t *testing.T) {
	db := setupTestDB()
	router := setupTestRouter(NewMessagesModule(db), 1)

	w := doImport(router, "\n\nBom dia!\n\n   \nBoa tarde!\n", "")
	assert.Equal(t, http.StatusOK, w.Code)

	var count int64
	db.Model(&models.Message{}).Count(&count)
	assert.Equal(t, int64(2), count)
}

func TestExportTxt_OneActiveMessagePerLine(t *testing.T) {
	db := setupTestDB()
	router := setupTestRouter(NewMessagesModule(db), 1)

	createTestMessage(db, 1, "Bom dia!", 1)
	createTestMessage(db, 1, "Boa tarde!", 2)
	gone := createTestMessage(db, 1, "excluída", 3)
	trashTestMessage(db, gone)

	req, _ := http.NewRequest("GET", "/app/mensagens/exportar.txt", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "mensagens.txt")
	assert.Equal(t, "Bom dia!\nBoa tarde!\n", w.Body.String())
}

func TestExportImportRoundTrip(t *testing.T) {
	db := setupTestDB()
	module := NewMessagesModule(db)
	source := setupTestRouter(module, 1)

	createTestMessage(db, 1, "Bom dia!", 1)
	createTestMessage(db, 1, "Boa tarde!", 2)

	req, _ := http.NewRequest("GET", "/app/mensagens/exportar.txt", nil)
	w := httptest.NewRecorder()
	source.ServeHTTP(w, req)
	exported := w.Body.String()

	// importar o arquivo exportado numa conta vazia reproduz o mesmo conjunto
	target := setupTestRouter(module, 2)
	w = doImport(target, exported, "")
	assert.Equal(t, http.StatusOK, w.Code)

	copied, _ := module.Active(2)
	var texts []string
	for _, msg := range copied {
		texts = append(texts, msg.Text)
	}
	assert.Equal(t, []string{"Bom dia!", "Boa tarde!"}, texts)
}

func TestImport_MissingFile(t *testing.T) {
	db := setupTestDB()
	router := setupTestRouter(NewMessagesModule(db), 1)

	req, _ := http.NewRequest("POST", "/app/mensagens/importar", strings.NewReader(""))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
