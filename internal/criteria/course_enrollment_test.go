package criteria

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoUserGroups/GoUserGroups/internal/db/models"
)

func TestCourseEnrollmentEvaluate(t *testing.T) {
	now := time.Now().UTC()
	lastWeek := now.Add(-7 * 24 * time.Hour)

	backend := &fakeBackend{
		users: []models.User{
			{ID: 1, Username: "alice"},
			{ID: 2, Username: "bob"},
			{ID: 3, Username: "carol"},
		},
		enrollments: []models.Enrollment{
			{ID: 1, UserID: 1, CourseID: "course-v1:Demo+101", Mode: "verified", CreatedAt: now},
			{ID: 2, UserID: 2, CourseID: "course-v1:Demo+101", Mode: "audit", CreatedAt: lastWeek},
			// User 4 is enrolled but not visible in the scope's user set.
			{ID: 3, UserID: 4, CourseID: "course-v1:Demo+101", Mode: "verified", CreatedAt: now},
		},
	}
	scope := &models.Scope{ResourceType: "course", ResourceID: "course-v1:Demo+101"}

	yesterday := now.Add(-24 * time.Hour).Format(time.RFC3339)

	testCases := []struct {
		name   string
		config string
		want   []uint64
	}{
		{
			name:   "no filters match every visible enrollee",
			config: `{}`,
			want:   []uint64{1, 2},
		},
		{
			name:   "filter by mode",
			config: `{"mode": "verified"}`,
			want:   []uint64{1},
		},
		{
			name:   "filter by enrollment date",
			config: `{"enrollment_date": "` + yesterday + `"}`,
			want:   []uint64{1},
		},
		{
			name:   "mode and date combined",
			config: `{"mode": "audit", "enrollment_date": "` + yesterday + `"}`,
			want:   []uint64{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			criterion, err := (&CourseEnrollmentCriterionType{}).
				Bind("in", json.RawMessage(tc.config), scope, backend)
			require.NoError(t, err)

			got, err := criterion.Evaluate()
			require.NoError(t, err)

			assert.ElementsMatch(t, tc.want, got.IDs())
		})
	}
}

func TestCourseEnrollmentScopeGate(t *testing.T) {
	backend := &fakeBackend{}
	config := json.RawMessage(`{}`)

	testCases := []struct {
		name    string
		scope   *models.Scope
		wantErr error
	}{
		{
			name:  "course scope",
			scope: &models.Scope{ResourceType: "course", ResourceID: "course-v1:Demo+101"},
		},
		{
			name:  "courseoverview resolves to course",
			scope: &models.Scope{ResourceType: "courseoverview", ResourceID: "course-v1:Demo+101"},
		},
		{
			name:    "organization scope rejected",
			scope:   &models.Scope{ResourceType: "organization", ResourceID: "org"},
			wantErr: ErrScopeNotSupported,
		},
		{
			name:    "instance scope rejected",
			scope:   &models.Scope{ResourceType: "instance"},
			wantErr: ErrScopeNotSupported,
		},
		{
			name:    "unknown resource type resolves to instance and is rejected",
			scope:   &models.Scope{ResourceType: "library", ResourceID: "lib:1"},
			wantErr: ErrScopeNotSupported,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := (&CourseEnrollmentCriterionType{}).Bind("in", config, tc.scope, backend)

			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}

			require.NoError(t, err)
		})
	}
}

func TestCourseEnrollmentSerializeRoundTrip(t *testing.T) {
	scope := &models.Scope{ResourceType: "course", ResourceID: "course-v1:Demo+101"}
	backend := &fakeBackend{}

	enrolledSince := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC).Format(time.RFC3339)
	config := json.RawMessage(`{"mode": "verified", "enrollment_date": "` + enrolledSince + `"}`)

	criterion, err := (&CourseEnrollmentCriterionType{}).Bind("in", config, scope, backend)
	require.NoError(t, err)

	spec := criterion.Serialize()
	assert.Equal(t, "course_enrollment", spec.CriterionType)
	assert.Equal(t, "in", spec.CriterionOperator)

	// The serialized spec binds back into an equivalent criterion: the
	// pointer fields and the timestamp survive re-marshalling.
	again, err := (&CourseEnrollmentCriterionType{}).
		Bind(spec.CriterionOperator, spec.CriterionConfig, scope, backend)
	require.NoError(t, err)
	assert.Equal(t, spec, again.Serialize())

	// Absent optional fields stay absent instead of serializing zero values.
	bare, err := (&CourseEnrollmentCriterionType{}).
		Bind("in", json.RawMessage(`{}`), scope, backend)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(bare.Serialize().CriterionConfig))
}

func TestCourseEnrollmentRejectsExistenceOperators(t *testing.T) {
	scope := &models.Scope{ResourceType: "course", ResourceID: "course-v1:Demo+101"}

	_, err := (&CourseEnrollmentCriterionType{}).
		Bind("exists", json.RawMessage(`{}`), scope, &fakeBackend{})
	assert.ErrorIs(t, err, ErrUnsupportedOperator)
}
