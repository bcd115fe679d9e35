package phapi

import (
	"context"
	"database/sql"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// User is a PhaserAI account row. The user id comes from the Cognito
// subject, not from the database.
type User struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

type userBody struct {
	UserID   string  `json:"user_id"`
	Email    *string `json:"email"`
	Username *string `json:"username"`
}

// Users routes user requests: GET/PUT /users/{userId} and POST /users.
func (h *Handler) Users(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	switch req.HTTPMethod {
	case "GET":
		return h.getUser(ctx, pathParam(req, "userId")), nil
	case "POST":
		return h.upsertUser(ctx, req), nil
	case "PUT":
		return h.updateUser(ctx, req), nil
	default:
		return ErrorResponse(405, "Method not allowed"), nil
	}
}

func (h *Handler) getUser(ctx context.Context, userID string) events.APIGatewayProxyResponse {
	if userID == "" {
		return ErrorResponse(400, "User ID is required")
	}

	var u User
	err := h.db.QueryRowContext(ctx,
		"SELECT user_id, email, username, created_at FROM app_8b514_users WHERE user_id = $1",
		userID).Scan(&u.UserID, &u.Email, &u.Username, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrorResponse(404, "User not found")
	}
	if err != nil {
		h.log.Error("failed to get user", zap.String("user_id", userID), zap.Error(err))
		return ErrorResponse(500, err.Error())
	}

	return Response(200, u)
}

func (h *Handler) upsertUser(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	var body userBody
	if err := decodeBody(req, &body); err != nil {
		return ErrorResponse(400, err.Error())
	}
	if body.UserID == "" || body.Email == nil || body.Username == nil {
		return ErrorResponse(400, "Missing required field: user_id, email and username are required")
	}

	var u User
	err := h.db.QueryRowContext(ctx, `
		INSERT INTO app_8b514_users (user_id, email, username)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id)
		DO UPDATE SET
			email = EXCLUDED.email,
			username = EXCLUDED.username
		RETURNING user_id, email, username, created_at`,
		body.UserID, *body.Email, *body.Username,
	).Scan(&u.UserID, &u.Email, &u.Username, &u.CreatedAt)
	if err != nil {
		h.log.Error("failed to upsert user", zap.String("user_id", body.UserID), zap.Error(err))
		return ErrorResponse(500, err.Error())
	}

	return Response(201, u)
}

func (h *Handler) updateUser(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	userID := pathParam(req, "userId")
	if userID == "" {
		return ErrorResponse(400, "User ID is required")
	}

	var body userBody
	if err := decodeBody(req, &body); err != nil {
		return ErrorResponse(400, err.Error())
	}

	var b updateBuilder
	if body.Email != nil {
		b.set("email", *body.Email)
	}
	if body.Username != nil {
		b.set("username", *body.Username)
	}
	if b.empty() {
		return ErrorResponse(400, "No fields to update")
	}

	query, args := b.query("app_8b514_users", "user_id", userID,
		"user_id, email, username, created_at")

	var u User
	err := h.db.QueryRowContext(ctx, query, args...).
		Scan(&u.UserID, &u.Email, &u.Username, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrorResponse(404, "User not found")
	}
	if err != nil {
		h.log.Error("failed to update user", zap.String("user_id", userID), zap.Error(err))
		return ErrorResponse(500, err.Error())
	}

	return Response(200, u)
}
