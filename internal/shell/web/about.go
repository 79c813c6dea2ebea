package web

import "net/http"

type aboutView struct {
	layout
	Title       string
	Description string
	Text        string
}

func (h *Handler) handleAboutAuthor(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, tmplAbout, aboutView{
		layout:      h.layout(r),
		Title:       "About the author",
		Description: "A short note about the author",
		Text:        "Yatube is written and maintained by a single author who enjoys small, readable services.",
	})
}

func (h *Handler) handleAboutTech(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, tmplAbout, aboutView{
		layout:      h.layout(r),
		Title:       "Technologies",
		Description: "A short note about the technologies",
		Text:        "Yatube is a Go service rendering HTML templates over SQLite or PostgreSQL, with a Redis-backed page cache.",
	})
}
