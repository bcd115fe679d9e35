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

// Language is a constructed language owned by a user. Phonemes and alphabet
// mappings are stored as JSONB and passed through untouched.
type Language struct {
	ID               string          `json:"id"`
	UserID           string          `json:"user_id"`
	Name             string          `json:"name"`
	Phonemes         json.RawMessage `json:"phonemes"`
	AlphabetMappings json.RawMessage `json:"alphabet_mappings"`
	Syllables        string          `json:"syllables"`
	Rules            string          `json:"rules"`
	CreatedAt        time.Time       `json:"created_at"`
}

const languageColumns = "id, user_id, name, phonemes, alphabet_mappings, syllables, rules, created_at"

const (
	defaultPhonemes         = `{"consonants":[],"vowels":[],"diphthongs":[]}`
	defaultAlphabetMappings = `{"consonants":{},"vowels":{},"diphthongs":{}}`
	defaultSyllables        = "CV"
)

type languageBody struct {
	UserID           string          `json:"user_id"`
	Name             *string         `json:"name"`
	Phonemes         json.RawMessage `json:"phonemes"`
	AlphabetMappings json.RawMessage `json:"alphabet_mappings"`
	Syllables        *string         `json:"syllables"`
	Rules            *string         `json:"rules"`
}

// Languages routes language requests: collection and item methods plus the
// nested /users/{userId}/languages listing.
func (h *Handler) Languages(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	switch req.HTTPMethod {
	case "GET":
		switch {
		case resourceHas(req, "/users/{userId}/languages"):
			return h.listUserLanguages(ctx, pathParam(req, "userId")), nil
		case resourceHas(req, "{languageId}"):
			return h.getLanguage(ctx, pathParam(req, "languageId"), queryParam(req, "userId")), nil
		default:
			return h.listLanguages(ctx, queryParam(req, "userId")), nil
		}
	case "POST":
		return h.createLanguage(ctx, req), nil
	case "PUT":
		return h.updateLanguage(ctx, req), nil
	case "DELETE":
		return h.deleteLanguage(ctx, pathParam(req, "languageId"), queryParam(req, "userId")), nil
	default:
		return ErrorResponse(405, "Method not allowed"), nil
	}
}

func (h *Handler) listLanguages(ctx context.Context, userID string) events.APIGatewayProxyResponse {
	var (
		rows *sql.Rows
		err  error
	)
	if userID != "" {
		rows, err = h.db.QueryContext(ctx,
			"SELECT "+languageColumns+" FROM app_8b514_languages WHERE user_id = $1 ORDER BY created_at DESC",
			userID)
	} else {
		rows, err = h.db.QueryContext(ctx,
			"SELECT "+languageColumns+" FROM app_8b514_languages ORDER BY created_at DESC")
	}
	if err != nil {
		h.log.Error("failed to list languages", zap.Error(err))
		return ErrorResponse(500, err.Error())
	}
	defer rows.Close()

	languages, err := scanLanguages(rows)
	if err != nil {
		h.log.Error("failed to scan languages", zap.Error(err))
		return ErrorResponse(500, err.Error())
	}
	return Response(200, languages)
}

func (h *Handler) listUserLanguages(ctx context.Context, userID string) events.APIGatewayProxyResponse {
	if userID == "" {
		return ErrorResponse(400, "User ID is required")
	}
	return h.listLanguages(ctx, userID)
}

func (h *Handler) getLanguage(ctx context.Context, languageID, userID string) events.APIGatewayProxyResponse {
	if languageID == "" {
		return ErrorResponse(400, "Language ID is required")
	}

	query := "SELECT " + languageColumns + " FROM app_8b514_languages WHERE id = $1"
	args := []any{languageID}
	if userID != "" {
		query += " AND user_id = $2"
		args = append(args, userID)
	}

	lang, err := scanLanguage(h.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return ErrorResponse(404, "Language not found")
	}
	if err != nil {
		h.log.Error("failed to get language", zap.String("language_id", languageID), zap.Error(err))
		return ErrorResponse(500, err.Error())
	}

	return Response(200, lang)
}

func (h *Handler) createLanguage(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	var body languageBody
	if err := decodeBody(req, &body); err != nil {
		return ErrorResponse(400, err.Error())
	}
	if body.UserID == "" || body.Name == nil {
		return ErrorResponse(400, "Missing required field: user_id and name are required")
	}

	phonemes := string(body.Phonemes)
	if phonemes == "" {
		phonemes = defaultPhonemes
	}
	mappings := string(body.AlphabetMappings)
	if mappings == "" {
		mappings = defaultAlphabetMappings
	}
	syllables := defaultSyllables
	if body.Syllables != nil {
		syllables = *body.Syllables
	}
	rules := ""
	if body.Rules != nil {
		rules = *body.Rules
	}

	lang, err := scanLanguage(h.db.QueryRowContext(ctx, `
		INSERT INTO app_8b514_languages (user_id, name, phonemes, alphabet_mappings, syllables, rules)
		VALUES ($1, $2, $3::jsonb, $4::jsonb, $5, $6)
		RETURNING `+languageColumns,
		body.UserID, *body.Name, phonemes, mappings, syllables, rules))
	if err != nil {
		h.log.Error("failed to create language", zap.String("user_id", body.UserID), zap.Error(err))
		return ErrorResponse(500, err.Error())
	}

	return Response(201, lang)
}

func (h *Handler) updateLanguage(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	languageID := pathParam(req, "languageId")
	if languageID == "" {
		return ErrorResponse(400, "Language ID is required")
	}

	var body languageBody
	if err := decodeBody(req, &body); err != nil {
		return ErrorResponse(400, err.Error())
	}

	var b updateBuilder
	if body.Name != nil {
		b.set("name", *body.Name)
	}
	if body.Phonemes != nil {
		b.set("phonemes", string(body.Phonemes))
	}
	if body.AlphabetMappings != nil {
		b.set("alphabet_mappings", string(body.AlphabetMappings))
	}
	if body.Syllables != nil {
		b.set("syllables", *body.Syllables)
	}
	if body.Rules != nil {
		b.set("rules", *body.Rules)
	}
	if b.empty() {
		return ErrorResponse(400, "No fields to update")
	}

	// Ownership check before mutating, when the caller identifies itself.
	if body.UserID != "" {
		var owner string
		err := h.db.QueryRowContext(ctx,
			"SELECT user_id FROM app_8b514_languages WHERE id = $1", languageID).Scan(&owner)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrorResponse(404, "Language not found")
		}
		if err != nil {
			return ErrorResponse(500, err.Error())
		}
		if owner != body.UserID {
			return ErrorResponse(403, "Access denied")
		}
	}

	query, args := b.query("app_8b514_languages", "id", languageID, languageColumns)
	lang, err := scanLanguage(h.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return ErrorResponse(404, "Language not found")
	}
	if err != nil {
		h.log.Error("failed to update language", zap.String("language_id", languageID), zap.Error(err))
		return ErrorResponse(500, err.Error())
	}

	return Response(200, lang)
}

func (h *Handler) deleteLanguage(ctx context.Context, languageID, userID string) events.APIGatewayProxyResponse {
	if languageID == "" {
		return ErrorResponse(400, "Language ID is required")
	}

	query := "DELETE FROM app_8b514_languages WHERE id = $1 RETURNING id"
	args := []any{languageID}
	if userID != "" {
		query = "DELETE FROM app_8b514_languages WHERE id = $1 AND user_id = $2 RETURNING id"
		args = append(args, userID)
	}

	var deleted string
	err := h.db.QueryRowContext(ctx, query, args...).Scan(&deleted)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrorResponse(404, "Language not found or access denied")
	}
	if err != nil {
		h.log.Error("failed to delete language", zap.String("language_id", languageID), zap.Error(err))
		return ErrorResponse(500, err.Error())
	}

	return Response(200, map[string]string{
		"message": "Language deleted successfully",
		"id":      deleted,
	})
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanLanguage(row rowScanner) (Language, error) {
	var lang Language
	var phonemes, mappings []byte
	err := row.Scan(&lang.ID, &lang.UserID, &lang.Name, &phonemes, &mappings,
		&lang.Syllables, &lang.Rules, &lang.CreatedAt)
	if err != nil {
		return Language{}, err
	}
	lang.Phonemes = json.RawMessage(phonemes)
	lang.AlphabetMappings = json.RawMessage(mappings)
	return lang, nil
}

func scanLanguages(rows *sql.Rows) ([]Language, error) {
	languages := []Language{}
	for rows.Next() {
		lang, err := scanLanguage(rows)
		if err != nil {
			return nil, err
		}
		languages = append(languages, lang)
	}
	return languages, rows.Err()
}
