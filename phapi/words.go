package phapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// Word is a lexicon entry in a constructed language.
type Word struct {
	ID           string        `json:"id"`
	LanguageID   string        `json:"language_id"`
	Word         string        `json:"word"`
	IPA          string        `json:"ipa"`
	Pos          []string      `json:"pos"`
	IsRoot       bool          `json:"is_root"`
	Embedding    []float64     `json:"embedding,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	Translations []Translation `json:"translations"`
}

// Translation is one meaning of a word in a natural language.
type Translation struct {
	ID           string    `json:"id"`
	LanguageCode string    `json:"language_code"`
	Meaning      string    `json:"meaning"`
	CreatedAt    time.Time `json:"created_at"`
}

type translationBody struct {
	LanguageCode string `json:"language_code"`
	Meaning      string `json:"meaning"`
}

type wordBody struct {
	UserID       string            `json:"user_id"`
	LanguageID   string            `json:"language_id"`
	Word         *string           `json:"word"`
	IPA          *string           `json:"ipa"`
	Pos          []string          `json:"pos"`
	IsRoot       *bool             `json:"is_root"`
	Embedding    []float64         `json:"embedding"`
	Translations []translationBody `json:"translations"`
}

// wordSelect fetches words with their translations aggregated as JSON, the
// shape the frontend consumes in a single request.
const wordSelect = `
	SELECT
		w.id, w.language_id, w.word, w.ipa, to_json(w.pos), w.is_root,
		to_json(w.embedding), w.created_at,
		COALESCE(
			json_agg(
				json_build_object(
					'id', t.id,
					'language_code', t.language_code,
					'meaning', t.meaning,
					'created_at', t.created_at
				) ORDER BY t.created_at
			) FILTER (WHERE t.id IS NOT NULL),
			'[]'::json
		)
	FROM app_8b514_words w
	LEFT JOIN app_8b514_translations t ON w.id = t.word_id`

// Words routes word requests: collection and item methods plus the nested
// /languages/{languageId}/words listing.
func (h *Handler) Words(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	switch req.HTTPMethod {
	case "GET":
		switch {
		case resourceHas(req, "/languages/{languageId}/words"):
			return h.listLanguageWords(ctx, pathParam(req, "languageId"), queryParam(req, "userId")), nil
		case resourceHas(req, "{wordId}"):
			return h.getWord(ctx, pathParam(req, "wordId"), queryParam(req, "userId")), nil
		default:
			return h.listWords(ctx, queryParam(req, "languageId"), queryParam(req, "userId")), nil
		}
	case "POST":
		return h.createWord(ctx, req), nil
	case "PUT":
		return h.updateWord(ctx, req), nil
	case "DELETE":
		return h.deleteWord(ctx, pathParam(req, "wordId"), queryParam(req, "userId")), nil
	default:
		return ErrorResponse(405, "Method not allowed"), nil
	}
}

// languageOwned reports whether the language exists and belongs to the user.
func (h *Handler) languageOwned(ctx context.Context, languageID, userID string) (bool, error) {
	var id string
	err := h.db.QueryRowContext(ctx,
		"SELECT id FROM app_8b514_languages WHERE id = $1 AND user_id = $2",
		languageID, userID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (h *Handler) listWords(ctx context.Context, languageID, userID string) events.APIGatewayProxyResponse {
	if languageID != "" && userID != "" {
		owned, err := h.languageOwned(ctx, languageID, userID)
		if err != nil {
			return ErrorResponse(500, err.Error())
		}
		if !owned {
			return ErrorResponse(404, "Language not found or access denied")
		}
	}

	query := wordSelect
	var args []any
	if languageID != "" {
		query += " WHERE w.language_id = $1"
		args = append(args, languageID)
	}
	query += " GROUP BY w.id ORDER BY w.created_at DESC"

	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		h.log.Error("failed to list words", zap.Error(err))
		return ErrorResponse(500, err.Error())
	}
	defer rows.Close()

	words, err := scanWords(rows)
	if err != nil {
		h.log.Error("failed to scan words", zap.Error(err))
		return ErrorResponse(500, err.Error())
	}
	return Response(200, words)
}

func (h *Handler) listLanguageWords(ctx context.Context, languageID, userID string) events.APIGatewayProxyResponse {
	if languageID == "" {
		return ErrorResponse(400, "Language ID is required")
	}
	if userID != "" {
		owned, err := h.languageOwned(ctx, languageID, userID)
		if err != nil {
			return ErrorResponse(500, err.Error())
		}
		if !owned {
			return ErrorResponse(404, "Language not found or access denied")
		}
	}
	return h.listWords(ctx, languageID, "")
}

func (h *Handler) getWord(ctx context.Context, wordID, userID string) events.APIGatewayProxyResponse {
	if wordID == "" {
		return ErrorResponse(400, "Word ID is required")
	}

	query := wordSelect + " WHERE w.id = $1"
	args := []any{wordID}
	if userID != "" {
		query = wordSelect + `
			JOIN app_8b514_languages l ON w.language_id = l.id
			WHERE w.id = $1 AND l.user_id = $2`
		args = append(args, userID)
	}
	query += " GROUP BY w.id"

	word, err := scanWord(h.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return ErrorResponse(404, "Word not found")
	}
	if err != nil {
		h.log.Error("failed to get word", zap.String("word_id", wordID), zap.Error(err))
		return ErrorResponse(500, err.Error())
	}

	return Response(200, word)
}

func (h *Handler) createWord(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	var body wordBody
	if err := decodeBody(req, &body); err != nil {
		return ErrorResponse(400, err.Error())
	}
	if body.LanguageID == "" || body.Word == nil || body.IPA == nil {
		return ErrorResponse(400, "Missing required field: language_id, word and ipa are required")
	}

	if body.UserID != "" {
		owned, err := h.languageOwned(ctx, body.LanguageID, body.UserID)
		if err != nil {
			return ErrorResponse(500, err.Error())
		}
		if !owned {
			return ErrorResponse(404, "Language not found or access denied")
		}
	}

	isRoot := false
	if body.IsRoot != nil {
		isRoot = *body.IsRoot
	}

	var wordID string
	err := h.db.QueryRowContext(ctx, `
		INSERT INTO app_8b514_words (language_id, word, ipa, pos, is_root, embedding)
		VALUES ($1, $2, $3, $4::text[], $5, $6::float8[])
		RETURNING id`,
		body.LanguageID, *body.Word, *body.IPA,
		textArrayLiteral(body.Pos), isRoot, floatArrayLiteral(body.Embedding),
	).Scan(&wordID)
	if err != nil {
		h.log.Error("failed to create word", zap.String("language_id", body.LanguageID), zap.Error(err))
		return ErrorResponse(500, err.Error())
	}

	if err := h.replaceTranslations(ctx, wordID, body.Translations, false); err != nil {
		h.log.Error("failed to insert translations", zap.String("word_id", wordID), zap.Error(err))
		return ErrorResponse(500, err.Error())
	}

	return h.respondWithWord(ctx, 201, wordID)
}

func (h *Handler) updateWord(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	wordID := pathParam(req, "wordId")
	if wordID == "" {
		return ErrorResponse(400, "Word ID is required")
	}

	var body wordBody
	if err := decodeBody(req, &body); err != nil {
		return ErrorResponse(400, err.Error())
	}

	if body.UserID != "" {
		var id string
		err := h.db.QueryRowContext(ctx, `
			SELECT w.id FROM app_8b514_words w
			JOIN app_8b514_languages l ON w.language_id = l.id
			WHERE w.id = $1 AND l.user_id = $2`,
			wordID, body.UserID).Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrorResponse(404, "Word not found or access denied")
		}
		if err != nil {
			return ErrorResponse(500, err.Error())
		}
	}

	var b updateBuilder
	if body.Word != nil {
		b.set("word", *body.Word)
	}
	if body.IPA != nil {
		b.set("ipa", *body.IPA)
	}
	if body.Pos != nil {
		b.set("pos", textArrayLiteral(body.Pos))
	}
	if body.IsRoot != nil {
		b.set("is_root", *body.IsRoot)
	}
	if body.Embedding != nil {
		b.set("embedding", floatArrayLiteral(body.Embedding))
	}
	// A translations-only body is rejected too: at least one word column
	// must change before translations are replaced.
	if b.empty() {
		return ErrorResponse(400, "No fields to update")
	}

	query, args := b.query("app_8b514_words", "id", wordID, "id")
	var id string
	err := h.db.QueryRowContext(ctx, query, args...).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrorResponse(404, "Word not found")
	}
	if err != nil {
		h.log.Error("failed to update word", zap.String("word_id", wordID), zap.Error(err))
		return ErrorResponse(500, err.Error())
	}

	if body.Translations != nil {
		if err := h.replaceTranslations(ctx, wordID, body.Translations, true); err != nil {
			h.log.Error("failed to replace translations", zap.String("word_id", wordID), zap.Error(err))
			return ErrorResponse(500, err.Error())
		}
	}

	return h.respondWithWord(ctx, 200, wordID)
}

func (h *Handler) deleteWord(ctx context.Context, wordID, userID string) events.APIGatewayProxyResponse {
	if wordID == "" {
		return ErrorResponse(400, "Word ID is required")
	}

	query := "DELETE FROM app_8b514_words WHERE id = $1 RETURNING id"
	args := []any{wordID}
	if userID != "" {
		query = `
			DELETE FROM app_8b514_words
			WHERE id = $1 AND language_id IN (
				SELECT id FROM app_8b514_languages WHERE user_id = $2
			)
			RETURNING id`
		args = append(args, userID)
	}

	var deleted string
	err := h.db.QueryRowContext(ctx, query, args...).Scan(&deleted)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrorResponse(404, "Word not found or access denied")
	}
	if err != nil {
		h.log.Error("failed to delete word", zap.String("word_id", wordID), zap.Error(err))
		return ErrorResponse(500, err.Error())
	}

	return Response(200, map[string]string{
		"message": "Word deleted successfully",
		"id":      deleted,
	})
}

// replaceTranslations inserts the non-empty translations for a word,
// clearing existing ones first when clear is set. Empty meanings are
// skipped, matching what the frontend submits for blank form rows.
func (h *Handler) replaceTranslations(ctx context.Context, wordID string, translations []translationBody, clear bool) error {
	if clear {
		if _, err := h.db.ExecContext(ctx,
			"DELETE FROM app_8b514_translations WHERE word_id = $1", wordID); err != nil {
			return errors.Wrap(err, "failed to delete existing translations")
		}
	}

	for _, tr := range translations {
		if tr.Meaning == "" {
			continue
		}
		code := tr.LanguageCode
		if code == "" {
			code = "en"
		}
		if _, err := h.db.ExecContext(ctx, `
			INSERT INTO app_8b514_translations (word_id, language_code, meaning)
			VALUES ($1, $2, $3)`,
			wordID, code, tr.Meaning); err != nil {
			return errors.Wrap(err, "failed to insert translation")
		}
	}
	return nil
}

func (h *Handler) respondWithWord(ctx context.Context, status int, wordID string) events.APIGatewayProxyResponse {
	word, err := scanWord(h.db.QueryRowContext(ctx,
		wordSelect+" WHERE w.id = $1 GROUP BY w.id", wordID))
	if err != nil {
		h.log.Error("failed to load word", zap.String("word_id", wordID), zap.Error(err))
		return ErrorResponse(500, err.Error())
	}
	return Response(status, word)
}

func scanWord(row rowScanner) (Word, error) {
	var w Word
	var pos, embedding, translations []byte
	err := row.Scan(&w.ID, &w.LanguageID, &w.Word, &w.IPA, &pos, &w.IsRoot,
		&embedding, &w.CreatedAt, &translations)
	if err != nil {
		return Word{}, err
	}

	if err := json.Unmarshal(pos, &w.Pos); err != nil {
		return Word{}, errors.Wrap(err, "failed to decode pos")
	}
	if len(embedding) > 0 && string(embedding) != "null" {
		if err := json.Unmarshal(embedding, &w.Embedding); err != nil {
			return Word{}, errors.Wrap(err, "failed to decode embedding")
		}
	}
	if err := json.Unmarshal(translations, &w.Translations); err != nil {
		return Word{}, errors.Wrap(err, "failed to decode translations")
	}
	return w, nil
}

func scanWords(rows *sql.Rows) ([]Word, error) {
	words := []Word{}
	for rows.Next() {
		w, err := scanWord(rows)
		if err != nil {
			return nil, err
		}
		words = append(words, w)
	}
	return words, rows.Err()
}
