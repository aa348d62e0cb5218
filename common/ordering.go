package common

import (
	"errors"

	"gorm.io/gorm"
)

var ErrForaDaColecao = errors.New("item não pertence à coleção do usuário")

// PersistOrder grava a nova sequência visual de uma coleção: cada id recebe
// item_order = posição+1, tudo dentro de uma única transação. Se qualquer id
// não pertencer ao usuário a transação inteira é desfeita, para nunca deixar
// a ordenação pela metade.
func PersistOrder(db *gorm.DB, model interface{}, userID int, ids []int) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for i, id := range ids {
			result := tx.Model(model).
				Where("id = ? AND user_id = ?", id, userID).
				Update("item_order", i+1)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return ErrForaDaColecao
			}
		}
		return nil
	})
}

// NextOrder calcula a posição para um item novo: max(item_order)+1 da coleção.
func NextOrder(db *gorm.DB, model interface{}, userID int) int {
	var max *int
	db.Model(model).
		Where("user_id = ?", userID).
		Select("MAX(item_order)").
		Scan(&max)
	if max == nil {
		return 1
	}
	return *max + 1
}
