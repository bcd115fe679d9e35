package phapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/require"
)

const fishTranslations = `[{"id":"t-1","language_code":"en","meaning":"fish","created_at":"2025-06-01T12:00:00Z"}]`

func wordResultRows(id, languageID, word, translationsJSON string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "language_id", "word", "ipa", "pos", "is_root",
		"embedding", "created_at", "translations",
	}).AddRow(id, languageID, word, "ˈ"+word, []byte(`["noun"]`), false,
		[]byte("null"), time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		[]byte(translationsJSON))
}

func TestListWordsOwnership(t *testing.T) {
	t.Parallel()

	req := events.APIGatewayProxyRequest{
		HTTPMethod:            "GET",
		Resource:              "/words",
		QueryStringParameters: map[string]string{"languageId": "l-1", "userId": "u-2"},
	}

	t.Run("foreign language gets 404 before listing", func(t *testing.T) {
		t.Parallel()
		h, mock := newMockHandler(t)
		mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM app_8b514_languages WHERE id = $1 AND user_id = $2")).
			WithArgs("l-1", "u-2").
			WillReturnError(sql.ErrNoRows)

		resp, err := h.Words(context.Background(), req)
		require.NoError(t, err)
		require.Equal(t, 404, resp.StatusCode)
		require.JSONEq(t, `{"error":"Language not found or access denied"}`, resp.Body)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("owned language lists words with aggregated translations", func(t *testing.T) {
		t.Parallel()
		h, mock := newMockHandler(t)
		mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM app_8b514_languages WHERE id = $1 AND user_id = $2")).
			WithArgs("l-1", "u-2").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("l-1"))
		mock.ExpectQuery(regexp.QuoteMeta("WHERE w.language_id = $1")).
			WithArgs("l-1").
			WillReturnRows(wordResultRows("w-1", "l-1", "kala", fishTranslations))

		resp, err := h.Words(context.Background(), req)
		require.NoError(t, err)
		require.Equal(t, 200, resp.StatusCode)

		var words []Word
		require.NoError(t, json.Unmarshal([]byte(resp.Body), &words))
		require.Len(t, words, 1)
		require.Equal(t, []string{"noun"}, words[0].Pos)
		require.Len(t, words[0].Translations, 1)
		require.Equal(t, "fish", words[0].Translations[0].Meaning)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUpdateWordOwnership(t *testing.T) {
	t.Parallel()

	req := func(body string) events.APIGatewayProxyRequest {
		return events.APIGatewayProxyRequest{
			HTTPMethod:     "PUT",
			PathParameters: map[string]string{"wordId": "w-1"},
			Body:           body,
		}
	}

	t.Run("translations-only body never reaches the database", func(t *testing.T) {
		t.Parallel()
		h, mock := newMockHandler(t)

		resp, err := h.Words(context.Background(), req(`{"translations":[{"meaning":"fish"}]}`))
		require.NoError(t, err)
		require.Equal(t, 400, resp.StatusCode)
		require.JSONEq(t, `{"error":"No fields to update"}`, resp.Body)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("foreign caller gets 404", func(t *testing.T) {
		t.Parallel()
		h, mock := newMockHandler(t)
		mock.ExpectQuery(regexp.QuoteMeta("WHERE w.id = $1 AND l.user_id = $2")).
			WithArgs("w-1", "u-2").
			WillReturnError(sql.ErrNoRows)

		resp, err := h.Words(context.Background(), req(`{"user_id":"u-2","word":"kala"}`))
		require.NoError(t, err)
		require.Equal(t, 404, resp.StatusCode)
		require.JSONEq(t, `{"error":"Word not found or access denied"}`, resp.Body)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("owner update replaces translations", func(t *testing.T) {
		t.Parallel()
		h, mock := newMockHandler(t)
		mock.ExpectQuery(regexp.QuoteMeta("WHERE w.id = $1 AND l.user_id = $2")).
			WithArgs("w-1", "u-1").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("w-1"))
		mock.ExpectQuery(regexp.QuoteMeta("UPDATE app_8b514_words SET word = $1 WHERE id = $2 RETURNING id")).
			WithArgs("kala", "w-1").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("w-1"))
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM app_8b514_translations WHERE word_id = $1")).
			WithArgs("w-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO app_8b514_translations")).
			WithArgs("w-1", "en", "fish").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectQuery(regexp.QuoteMeta("WHERE w.id = $1 GROUP BY w.id")).
			WithArgs("w-1").
			WillReturnRows(wordResultRows("w-1", "l-1", "kala", fishTranslations))

		resp, err := h.Words(context.Background(),
			req(`{"user_id":"u-1","word":"kala","translations":[{"meaning":"fish"}]}`))
		require.NoError(t, err)
		require.Equal(t, 200, resp.StatusCode)
		require.Contains(t, resp.Body, "fish")
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDeleteWordScoped(t *testing.T) {
	t.Parallel()

	req := events.APIGatewayProxyRequest{
		HTTPMethod:            "DELETE",
		PathParameters:        map[string]string{"wordId": "w-1"},
		QueryStringParameters: map[string]string{"userId": "u-2"},
	}

	t.Run("foreign caller gets 404", func(t *testing.T) {
		t.Parallel()
		h, mock := newMockHandler(t)
		mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM app_8b514_languages WHERE user_id = $2")).
			WithArgs("w-1", "u-2").
			WillReturnError(sql.ErrNoRows)

		resp, err := h.Words(context.Background(), req)
		require.NoError(t, err)
		require.Equal(t, 404, resp.StatusCode)
		require.JSONEq(t, `{"error":"Word not found or access denied"}`, resp.Body)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("owner deletes", func(t *testing.T) {
		t.Parallel()
		h, mock := newMockHandler(t)
		mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM app_8b514_languages WHERE user_id = $2")).
			WithArgs("w-1", "u-2").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("w-1"))

		resp, err := h.Words(context.Background(), req)
		require.NoError(t, err)
		require.Equal(t, 200, resp.StatusCode)
		require.Contains(t, resp.Body, "Word deleted successfully")
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
