package panel

import (
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"respostas/auth"
	"respostas/links"
	"respostas/messages"
	"respostas/models"
	"respostas/prefs"
	"respostas/problems"
)

// PanelModule renderiza a área do usuário: as três listas, o badge da
// lixeira e o nome de quem está logado. As mutações ficam nos endpoints
// JSON de cada módulo.
type PanelModule struct {
	messages *messages.MessagesModule
	problems *problems.ProblemsModule
	links    *links.LinksModule
	prefs    *prefs.PrefsModule
}

func NewPanelModule(m *messages.MessagesModule, p *problems.ProblemsModule, l *links.LinksModule, pr *prefs.PrefsModule) *PanelModule {
	return &PanelModule{messages: m, problems: p, links: l, prefs: pr}
}

func (p *PanelModule) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("/", p.index)
}

type solutionView struct {
	Label     string
	Status    string
	HTML      template.HTML
	CopyTexts []string
}

type problemView struct {
	ID          int
	Title       string
	Description string
	Tags        []string
	Solutions   []solutionView
}

func (p *PanelModule) index(c *gin.Context) {
	userID := auth.CurrentUserID(c)
	username := c.GetString("username")

	msgs, err := p.messages.Active(userID)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "panel_error.html", gin.H{
			"error": "Erro ao carregar mensagens",
		})
		return
	}

	probs, err := p.problems.All(userID)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "panel_error.html", gin.H{
			"error": "Erro ao carregar problemas",
		})
		return
	}

	linkItems, err := p.links.All(userID)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "panel_error.html", gin.H{
			"error": "Erro ao carregar links",
		})
		return
	}

	pref, err := p.prefs.For(userID)
	if err != nil {
		pref = &models.UserPref{Theme: "claro"}
	}

	probViews := make([]problemView, len(probs))
	for i, prob := range probs {
		view := problemView{
			ID:          prob.ID,
			Title:       prob.Title,
			Description: prob.Description,
			Tags:        prob.Tags,
		}
		for _, sol := range prob.Solutions {
			view.Solutions = append(view.Solutions, solutionView{
				Label:     sol.Label,
				Status:    sol.Status,
				HTML:      template.HTML(problems.RenderSolutionHTML(sol.Text)),
				CopyTexts: sol.CopyTexts,
			})
		}
		probViews[i] = view
	}

	c.HTML(http.StatusOK, "panel_index.html", gin.H{
		"username":   username,
		"theme":      pref.Theme,
		"compact":    pref.Compact,
		"favorites":  pref.Favorites,
		"messages":   msgs,
		"msgCount":   len(msgs),
		"trashCount": p.messages.TrashCount(userID),
		"problems":   probViews,
		"probCount":  len(probViews),
		"linkGroups": links.GroupByCategory(linkItems),
		"linkCount":  len(linkItems),
	})
}
