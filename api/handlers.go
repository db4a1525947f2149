package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"eventsrag/pkg/runctx"

	"go.uber.org/zap"
)

const failureText = "Sorry, something went wrong while answering. Please try again."

type pageData struct {
	Question string
	Answer   string
	Error    string
	Sources  []string
}

// FormHandler renders the question form on GET and answers it on POST.
func (s *Server) FormHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.render(w, http.StatusOK, pageData{})
	case http.MethodPost:
		question := strings.TrimSpace(r.FormValue("question"))
		if question == "" {
			s.render(w, http.StatusBadRequest, pageData{Error: "Please enter a question."})
			return
		}

		ctx := runctx.Start(r.Context(), "serve")
		result, err := s.asker.AnswerWithContext(ctx, question)
		if err != nil {
			runctx.Logger(ctx, s.logger).Error("answer failed", zap.String("question", question), zap.Error(err))
			s.render(w, http.StatusInternalServerError, pageData{Question: question, Error: failureText})
			return
		}

		data := pageData{Question: question, Answer: result.Answer}
		for _, h := range result.Hits {
			data.Sources = append(data.Sources, h.Payload.SourceFile)
		}
		s.render(w, http.StatusOK, data)
	default:
		w.Header().Set("Allow", "GET, POST")
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) render(w http.ResponseWriter, status int, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.page.Execute(w, data); err != nil {
		s.logger.Error("render page", zap.Error(err))
	}
}

type AskRequest struct {
	Question string `json:"question"`
}

type AskSource struct {
	Text       string  `json:"text"`
	SourceFile string  `json:"source_file"`
	Score      float32 `json:"score"`
}

type AskResponse struct {
	Answer  string      `json:"answer"`
	Sources []AskSource `json:"sources"`
}

// AskHandler answers a JSON question.
func (s *Server) AskHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	question := strings.TrimSpace(req.Question)
	if question == "" {
		http.Error(w, "question is required", http.StatusBadRequest)
		return
	}

	ctx := runctx.Start(r.Context(), "serve")
	result, err := s.asker.AnswerWithContext(ctx, question)
	if err != nil {
		runctx.Logger(ctx, s.logger).Error("answer failed", zap.String("question", question), zap.Error(err))
		http.Error(w, failureText, http.StatusInternalServerError)
		return
	}

	resp := AskResponse{Answer: result.Answer, Sources: make([]AskSource, 0, len(result.Hits))}
	for _, h := range result.Hits {
		resp.Sources = append(resp.Sources, AskSource{
			Text:       h.Payload.Text,
			SourceFile: h.Payload.SourceFile,
			Score:      h.Score,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Error("encode response", zap.Error(err))
	}
}

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Prague Events Chat</title>
</head>
<body>
<h1>Prague Events Chat</h1>
<form method="post" action="/">
  <input type="text" name="question" size="80" value="{{.Question}}" placeholder="Ask about events in Prague">
  <button type="submit">Ask</button>
</form>
{{if .Error}}<p class="error">{{.Error}}</p>{{end}}
{{if .Answer}}
<h2>Answer:</h2>
<p>{{.Answer}}</p>
{{if .Sources}}<h3>Sources</h3>
<ul>{{range .Sources}}<li>{{.}}</li>{{end}}</ul>{{end}}
{{end}}
</body>
</html>
`
