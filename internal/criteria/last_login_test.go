package criteria

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoUserGroups/GoUserGroups/internal/db/models"
)

func lastLoginUsers(now time.Time) []models.User {
	hourAgo := now.Add(-1 * time.Hour)
	twoDaysAgo := now.Add(-2 * 24 * time.Hour)
	threeDaysAgo := now.Add(-3 * 24 * time.Hour)

	return []models.User{
		{ID: 1, Username: "recent", LastLogin: &hourAgo},
		{ID: 2, Username: "two-days", LastLogin: &twoDaysAgo},
		{ID: 3, Username: "three-days", LastLogin: &threeDaysAgo},
		{ID: 4, Username: "never"},
	}
}

// The operator applies to "days since last login", so > 1 day means the
// login timestamp lies before now-1d, and < 1 day means after it.
func TestLastLoginEvaluate(t *testing.T) {
	now := time.Now().UTC()
	backend := &fakeBackend{users: lastLoginUsers(now)}
	scope := &models.Scope{ResourceType: "instance"}

	testCases := []struct {
		name     string
		operator string
		days     int
		want     []uint64
	}{
		{
			name:     "logged in more than a day ago",
			operator: ">",
			days:     1,
			want:     []uint64{2, 3},
		},
		{
			name:     "logged in within the last day",
			operator: "<",
			days:     1,
			want:     []uint64{1},
		},
		{
			name:     "at least two days ago",
			operator: ">=",
			days:     2,
			want:     []uint64{2, 3},
		},
		{
			name:     "at most two days ago",
			operator: "<=",
			days:     2,
			want:     []uint64{1, 2},
		},
		{
			name:     "exactly matching threshold",
			operator: "=",
			days:     0,
			want:     []uint64{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			config, err := json.Marshal(map[string]any{"days": tc.days})
			require.NoError(t, err)

			criterion, err := (&LastLoginCriterionType{}).Bind(tc.operator, config, scope, backend)
			require.NoError(t, err)

			got, err := criterion.Evaluate()
			require.NoError(t, err)

			assert.ElementsMatch(t, tc.want, got.IDs())

			// Users without a recorded login never match.
			assert.False(t, got.Contains(4))
		})
	}
}

func TestLastLoginBindValidation(t *testing.T) {
	scope := &models.Scope{ResourceType: "instance"}
	backend := &fakeBackend{}

	testCases := []struct {
		name     string
		operator string
		config   string
		wantErr  error
	}{
		{
			name:     "valid",
			operator: ">",
			config:   `{"days": 7}`,
		},
		{
			name:     "zero days is valid",
			operator: "<",
			config:   `{"days": 0}`,
		},
		{
			name:     "missing days",
			operator: ">",
			config:   `{}`,
			wantErr:  ErrInvalidConfiguration,
		},
		{
			name:     "negative days",
			operator: ">",
			config:   `{"days": -1}`,
			wantErr:  ErrInvalidConfiguration,
		},
		{
			name:     "malformed json",
			operator: ">",
			config:   `{"days":`,
			wantErr:  ErrInvalidConfiguration,
		},
		{
			name:     "set operator not supported",
			operator: "in",
			config:   `{"days": 7}`,
			wantErr:  ErrUnsupportedOperator,
		},
		{
			name:     "unknown operator",
			operator: "between",
			config:   `{"days": 7}`,
			wantErr:  ErrUnsupportedOperator,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			criterion, err := (&LastLoginCriterionType{}).
				Bind(tc.operator, json.RawMessage(tc.config), scope, backend)

			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				assert.Nil(t, criterion)

				return
			}

			require.NoError(t, err)
			assert.NotNil(t, criterion)
		})
	}
}

func TestLastLoginSerializeRoundTrip(t *testing.T) {
	scope := &models.Scope{ResourceType: "instance"}
	backend := &fakeBackend{}

	criterion, err := (&LastLoginCriterionType{}).
		Bind(">", json.RawMessage(`{"days": 30}`), scope, backend)
	require.NoError(t, err)

	spec := criterion.Serialize()
	assert.Equal(t, "last_login", spec.CriterionType)
	assert.Equal(t, ">", spec.CriterionOperator)

	// The serialized spec binds back into an equivalent criterion.
	again, err := (&LastLoginCriterionType{}).
		Bind(spec.CriterionOperator, spec.CriterionConfig, scope, backend)
	require.NoError(t, err)
	assert.Equal(t, spec, again.Serialize())
}
