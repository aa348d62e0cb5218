package problems

import "respostas/models"

// Normalize atualiza um problema no formato antigo (campo único "solution")
// para o formato atual com lista de soluções. Roda uma vez, na carga, antes
// de qualquer renderização ou busca tocar no documento.
func Normalize(p *models.Problem) {
	if len(p.Solutions) > 0 {
		for i := range p.Solutions {
			if p.Solutions[i].Status == "" {
				p.Solutions[i].Status = "confirmado"
			}
		}
		return
	}

	if p.Solution != "" {
		p.Solutions = []models.Solution{{
			Label:  "Solução 1",
			Text:   p.Solution,
			Status: "confirmado",
		}}
	}
}
