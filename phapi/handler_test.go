package phapi

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUpdateBuilder(t *testing.T) {
	t.Parallel()

	var b updateBuilder
	require.True(t, b.empty())

	b.set("email", "new@example.com")
	b.set("username", "newname")
	require.False(t, b.empty())

	query, args := b.query("app_8b514_users", "user_id", "u-1", "user_id, email")
	require.Equal(t,
		"UPDATE app_8b514_users SET email = $1, username = $2 WHERE user_id = $3 RETURNING user_id, email",
		query)
	require.Equal(t, []any{"new@example.com", "newname", "u-1"}, args)
}

func TestTextArrayLiteral(t *testing.T) {
	t.Parallel()

	for name, tt := range map[string]struct {
		in   []string
		want string
	}{
		"empty":   {nil, "{}"},
		"single":  {[]string{"noun"}, `{"noun"}`},
		"several": {[]string{"noun", "verb"}, `{"noun","verb"}`},
		"quotes":  {[]string{`say "hi"`}, `{"say \"hi\""}`},
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, textArrayLiteral(tt.in))
		})
	}
}

func TestFloatArrayLiteral(t *testing.T) {
	t.Parallel()

	require.Nil(t, floatArrayLiteral(nil))
	require.Equal(t, "{}", floatArrayLiteral([]float64{}))
	require.Equal(t, "{0.1,0.25,3}", floatArrayLiteral([]float64{0.1, 0.25, 3}))
}
