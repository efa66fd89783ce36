package echoapi

import (
	"net/http"
	"net/mail"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/academy"
)

const (
	announcementTmpl = "announcement"

	announcementText = `{{.Title}}

{{.MessageBody}}
`
	announcementHTML = `<h2>{{.Title}}</h2>
<p>{{.MessageBody}}</p>
`
	defaultRecentLimit = 20
)

func init() {
	if err := core.RegisterEmailTemplate(announcementTmpl, announcementText, announcementHTML); err != nil {
		panic(err)
	}
}

func (api *academyAPI) registerAnnouncements(g *echo.Group) {
	ag := g.Group("/announcements")
	ag.GET("/recent", api.recentAnnouncements)
	ag.POST("/broadcast", api.broadcast)
	ag.PUT("/:id", updateHandler(api, api.repo.UpdateAnnouncement))
	ag.DELETE("/:id", deleteHandler(api.repo.DeleteAnnouncement))
}

func (api *academyAPI) recentAnnouncements(ctx echo.Context) error {
	limit := defaultRecentLimit
	if l, err := strconv.Atoi(ctx.QueryParam("limit")); err == nil && l > 0 {
		limit = l
	}
	rows, err := api.repo.RecentAnnouncements(limit)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, rows)
}

// broadcast saves an announcement then emails it to its audience, blind-copied.
func (api *academyAPI) broadcast(ctx echo.Context) error {
	var data academy.AnnouncementDraft
	if err := api.bind(ctx, &data); err != nil {
		return err
	}
	a, recipients, err := api.repo.CreateAnnouncement(data)
	if err != nil {
		return err
	}

	if len(recipients) > 0 && api.mailSvc != nil {
		bcc := make([]mail.Address, 0, len(recipients))
		for _, usr := range recipients {
			bcc = append(bcc, mail.Address{Name: usr.Name, Address: usr.Email})
		}
		api.mailSvc.SendMessages(&core.EmailMessage{
			Bcc:          bcc,
			Subject:      a.Title,
			TemplateName: announcementTmpl,
			TemplateData: a,
		})
	}
	return respond(ctx, http.StatusCreated, a)
}
