package http

import (
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"precos/internal/core"
	"precos/internal/intake"
	"precos/internal/log"
)

// render executes the named template, answering 500 when templates failed
// to parse at startup instead of panicking on a nil template set.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	if s.templates == nil {
		s.logger.ErrorContext(r.Context(), "Templates not loaded",
			log.FieldPath, r.URL.Path, "template", name)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		s.logger.ErrorContext(r.Context(), "Template execution failed",
			log.FieldError, err, "template", name)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReady checks that the ledger backend answers a load.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if _, err := s.store.Load(r.Context()); err != nil {
		s.logger.ErrorContext(r.Context(), "Readiness check failed", log.FieldError, err)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("ledger unavailable"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	type combo struct {
		AgeClass  string
		SizeClass string
		Label     string
	}
	data := struct {
		Today  string
		Combos []combo
	}{Today: time.Now().Format("2006-01-02")}
	for _, c := range s.catalog.Combinations() {
		data.Combos = append(data.Combos, combo{
			AgeClass:  c.AgeClass,
			SizeClass: c.SizeClass,
			Label:     c.Label(),
		})
	}

	s.render(w, r, "index.html", data)
}

// handleItemsForm renders the per-item price inputs for a chosen combination.
func (s *Server) handleItemsForm(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ageClass := sanitizeInput(r.URL.Query().Get("age"))
	sizeClass := sanitizeInput(r.URL.Query().Get("size"))
	entries := s.catalog.ItemsFor(ageClass, sizeClass)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if len(entries) == 0 {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`<div class="error">Combinação de porte e idade não encontrada</div>`))
		return
	}

	combo := core.Combination{AgeClass: ageClass, SizeClass: sizeClass}.Normalized()
	type item struct {
		Index       int
		Item        string
		Description string
	}
	data := struct {
		AgeClass  string
		SizeClass string
		Label     string
		Today     string
		Items     []item
	}{
		AgeClass:  combo.AgeClass,
		SizeClass: combo.SizeClass,
		Label:     combo.Label(),
		Today:     time.Now().Format("2006-01-02"),
	}
	for i, e := range entries {
		data.Items = append(data.Items, item{Index: i, Item: e.Item, Description: e.Description})
	}

	s.render(w, r, "items_form.html", data)
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		s.logger.ErrorContext(r.Context(), "Parse form error", log.FieldError, err, log.FieldMethod, r.Method, log.FieldPath, r.URL.Path)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`<div class="error">Formato de requisição inválido</div>`))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	ageClass := sanitizeInput(r.Form.Get("age"))
	sizeClass := sanitizeInput(r.Form.Get("size"))
	entries := s.catalog.ItemsFor(ageClass, sizeClass)
	if len(entries) == 0 {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`<div class="error">Combinação de porte e idade não encontrada</div>`))
		return
	}

	observedAt := core.Date{Time: time.Now()}
	if v := strings.TrimSpace(r.Form.Get("date")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`<div class="error">Data da consulta inválida</div>`))
			return
		}
		observedAt = d
	}

	batch := core.SubmissionBatch{
		Code:       sanitizeInput(r.Form.Get("code")),
		ObservedAt: observedAt,
		Location:   sanitizeInput(r.Form.Get("location")),
	}
	// The catalog, not the form payload, decides which items exist and in
	// which order.
	for i, e := range entries {
		raw := strings.TrimSpace(r.Form.Get("price_" + strconv.Itoa(i)))
		cents, err := core.ParsePriceToCents(raw)
		if err != nil {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`<div class="error">Preço inválido para '` +
				template.HTMLEscapeString(e.Item) + `'</div>`))
			return
		}
		batch.Entries = append(batch.Entries, core.SubmissionEntry{
			Category:  e.Category,
			Item:      e.Item,
			UnitPrice: core.Money{Cents: cents},
		})
	}

	combo := core.Combination{AgeClass: ageClass, SizeClass: sizeClass}.Normalized()
	res, err := s.intake.Submit(r.Context(), batch, combo)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to save submission",
			log.FieldError, err,
			"combination", combo.Label())
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`<div class="error">Erro ao salvar os dados. Tente novamente.</div>`))
		return
	}

	switch res.Outcome {
	case intake.OutcomeInvalidCode:
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`<div class="error">O código do usuário deve conter exatamente 15 caracteres.</div>`))
	case intake.OutcomeMissingLocation:
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`<div class="error">Informe o local da consulta.</div>`))
	case intake.OutcomeUnauthorized:
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`<div class="error">Chave de autorização não encontrada. Os dados não foram enviados.</div>`))
	case intake.OutcomeNothingToSave:
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`<div class="warning">Nenhum preço foi informado. Nenhum dado foi salvo.</div>`))
	case intake.OutcomeAccepted:
		s.logger.InfoContext(r.Context(), "Submission saved",
			log.FieldOutcome, string(res.Outcome),
			log.FieldRows, res.Saved,
			"combination", combo.Label())
		w.Header().Set("HX-Trigger", `{"prices:recorded": {"rows": `+strconv.Itoa(res.Saved)+`}}`)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`<div class="success">` + strconv.Itoa(res.Saved) + ` registro(s) salvos com sucesso!</div>`))
	default:
		s.logger.ErrorContext(r.Context(), "Unknown intake outcome", log.FieldOutcome, string(res.Outcome))
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`<div class="error">Erro interno</div>`))
	}
}

// handleStats renders the statistics partial from a fresh ledger read.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	ctx := r.Context()

	count, err := s.aggregator.Count(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Stats load error", log.FieldError, err)
		_, _ = w.Write([]byte(`<section id="stats" class="stats"><div class="placeholder">Erro ao carregar estatísticas</div></section>`))
		return
	}
	if count == 0 {
		_, _ = w.Write([]byte(`<section id="stats" class="stats"><div class="placeholder">Nenhum dado foi registrado ainda.</div></section>`))
		return
	}

	mean, _, err := s.aggregator.MeanPrice(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Mean price error", log.FieldError, err)
		http.Error(w, "stats unavailable", http.StatusInternalServerError)
		return
	}
	topItem, _, err := s.aggregator.MostFrequentItem(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Most frequent item error", log.FieldError, err)
		http.Error(w, "stats unavailable", http.StatusInternalServerError)
		return
	}
	dist, err := s.aggregator.PriceDistributionByCategory(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Distribution error", log.FieldError, err)
		http.Error(w, "stats unavailable", http.StatusInternalServerError)
		return
	}
	trend, err := s.aggregator.MeanPriceOverTimeByCategory(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Trend error", log.FieldError, err)
		http.Error(w, "stats unavailable", http.StatusInternalServerError)
		return
	}

	s.render(w, r, "stats.html", buildStatsView(count, mean, topItem, dist, trend))
}
