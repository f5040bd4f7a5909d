package engine

import (
	"encoding/json"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/GoUserGroups/GoUserGroups/internal/criteria"
	"github.com/GoUserGroups/GoUserGroups/internal/db/models"
)

var testDBSeq atomic.Int64

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// A plain ":memory:" DSN gives every pooled connection its own private
	// database, so queries that land on a second connection miss the
	// migrated schema; a named shared-cache DSN keeps one database per test.
	dsn := fmt.Sprintf("file:enginetest%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	// Migrate the schema
	err = db.AutoMigrate(
		&models.User{},
		&models.Enrollment{},
		&models.Scope{},
		&models.Group{},
		&models.Criterion{},
		&models.Membership{},
		&models.GroupCollection{},
	)
	require.NoError(t, err, "failed to migrate test database")

	return db
}

// newTestService wires an engine service over an in-memory database.
func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	db := setupTestDB(t)
	service := New(db, criteria.DefaultRegistry(), criteria.NewGormBackendClient(db))

	return service, db
}

// seedUsers inserts test users into the database.
func seedUsers(t *testing.T, db *gorm.DB, users []models.User) {
	t.Helper()

	for i := range users {
		err := db.Create(&users[i]).Error
		require.NoError(t, err, "failed to seed test data")
	}
}

func instanceScope() ScopeSpec {
	return ScopeSpec{
		Name:         "site",
		Description:  "Site-wide scope",
		ResourceType: "instance",
		ResourceID:   "example.org",
	}
}

func manualSpec(t *testing.T, entries ...string) criteria.Spec {
	t.Helper()

	config, err := json.Marshal(map[string]any{"usernames_or_emails": entries})
	require.NoError(t, err)

	return criteria.Spec{
		CriterionType:     "manual",
		CriterionOperator: "in",
		CriterionConfig:   config,
	}
}

func TestCreateGroupWithCriteria(t *testing.T) {
	service, db := newTestService(t)

	group, err := service.CreateGroupWithCriteria(
		"editors",
		"Editorial staff",
		instanceScope(),
		[]criteria.Spec{manualSpec(t, "alice", "bob")},
	)
	require.NoError(t, err)
	require.NotNil(t, group)

	assert.Equal(t, "editors", group.Name)
	assert.True(t, group.Enabled)
	assert.NotZero(t, group.ScopeID)
	require.Len(t, group.Criteria, 1)
	assert.Equal(t, "manual", group.Criteria[0].CriterionType)

	// The criterion row is persisted.
	var count int64

	require.NoError(t, db.Model(&models.Criterion{}).
		Where("group_id = ?", group.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestCreateGroupWithCriteriaNilDB(t *testing.T) {
	service := New(nil, criteria.DefaultRegistry(), &criteria.GormBackendClient{})

	_, err := service.CreateGroupWithCriteria("g", "", instanceScope(), nil)
	assert.ErrorIs(t, err, ErrDBNil)
}

func TestCreateGroupWithCriteriaValidationAbortsEverything(t *testing.T) {
	service, db := newTestService(t)

	testCases := []struct {
		name    string
		specs   []criteria.Spec
		wantErr error
		index   int
	}{
		{
			name: "unknown criterion type",
			specs: []criteria.Spec{
				{CriterionType: "does_not_exist", CriterionOperator: "="},
			},
			wantErr: criteria.ErrUnknownCriterionType,
			index:   0,
		},
		{
			name: "second criterion has invalid config",
			specs: []criteria.Spec{
				manualSpec(t, "alice"),
				{
					CriterionType:     "last_login",
					CriterionOperator: ">",
					CriterionConfig:   json.RawMessage(`{"days": -1}`),
				},
			},
			wantErr: criteria.ErrInvalidConfiguration,
			index:   1,
		},
		{
			name: "scope incompatible criterion",
			specs: []criteria.Spec{
				{
					CriterionType:     "course_enrollment",
					CriterionOperator: "in",
					CriterionConfig:   json.RawMessage(`{}`),
				},
			},
			wantErr: criteria.ErrScopeNotSupported,
			index:   0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.CreateGroupWithCriteria("broken", "", instanceScope(), tc.specs)
			require.Error(t, err)
			require.ErrorIs(t, err, tc.wantErr)

			var valErr *CriterionValidationError
			require.ErrorAs(t, err, &valErr)
			assert.Equal(t, tc.index, valErr.Index)

			// Nothing was persisted: no group and no criterion rows.
			var groups int64

			require.NoError(t, db.Model(&models.Group{}).Count(&groups).Error)
			assert.Zero(t, groups)

			var criteriaRows int64

			require.NoError(t, db.Model(&models.Criterion{}).Count(&criteriaRows).Error)
			assert.Zero(t, criteriaRows)
		})
	}
}

func TestCreateGroupWithCriteriaDuplicateName(t *testing.T) {
	service, _ := newTestService(t)

	_, err := service.CreateGroupWithCriteria("editors", "", instanceScope(), nil)
	require.NoError(t, err)

	_, err = service.CreateGroupWithCriteria("editors", "", instanceScope(), nil)
	assert.ErrorIs(t, err, ErrDuplicateGroupName)

	// The same name under a different scope is fine.
	courseScope := ScopeSpec{
		Name:         "demo course",
		ResourceType: "course",
		ResourceID:   "course-v1:Demo+101",
	}

	_, err = service.CreateGroupWithCriteria("editors", "", courseScope, nil)
	assert.NoError(t, err)
}

func TestGetOrCreateGroupAndScopeIsIdempotent(t *testing.T) {
	service, _ := newTestService(t)

	first, firstScope, err := service.GetOrCreateGroupAndScope("readers", "desc", instanceScope())
	require.NoError(t, err)

	second, secondScope, err := service.GetOrCreateGroupAndScope("readers", "ignored", instanceScope())
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, firstScope.ID, secondScope.ID)

	// The original description wins; Attrs only apply on creation.
	assert.Equal(t, "desc", second.Description)
}

func TestGetGroupByID(t *testing.T) {
	service, _ := newTestService(t)

	created, err := service.CreateGroupWithCriteria(
		"editors", "", instanceScope(), []criteria.Spec{manualSpec(t, "alice")})
	require.NoError(t, err)

	got, err := service.GetGroupByID(created.ID)
	require.NoError(t, err)

	assert.Equal(t, created.Name, got.Name)
	assert.Equal(t, "instance", got.Scope.ResourceType)
	require.Len(t, got.Criteria, 1)

	_, err = service.GetGroupByID(9999)
	assert.ErrorIs(t, err, ErrGroupNotFound)
}

func TestGetGroupByNameAndScope(t *testing.T) {
	service, _ := newTestService(t)

	created, err := service.CreateGroupWithCriteria("editors", "", instanceScope(), nil)
	require.NoError(t, err)

	got, err := service.GetGroupByNameAndScope("editors", created.ScopeID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = service.GetGroupByNameAndScope("missing", created.ScopeID)
	assert.ErrorIs(t, err, ErrGroupNotFound)
}

func TestUpdateGroupNameOrDescription(t *testing.T) {
	service, _ := newTestService(t)

	created, err := service.CreateGroupWithCriteria("editors", "old", instanceScope(), nil)
	require.NoError(t, err)

	require.NoError(t, service.UpdateGroupNameOrDescription(created.ID, "writers", "new"))

	got, err := service.GetGroupByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "writers", got.Name)
	assert.Equal(t, "new", got.Description)

	assert.ErrorIs(t, service.UpdateGroupNameOrDescription(9999, "x", "y"), ErrGroupNotFound)
}

func TestSoftDeleteGroup(t *testing.T) {
	service, _ := newTestService(t)

	created, err := service.CreateGroupWithCriteria(
		"editors", "", instanceScope(), []criteria.Spec{manualSpec(t, "alice")})
	require.NoError(t, err)

	require.NoError(t, service.SoftDeleteGroup(created.ID))

	got, err := service.GetGroupByID(created.ID)
	require.NoError(t, err)
	assert.False(t, got.Enabled)

	// Criteria survive a soft delete.
	assert.Len(t, got.Criteria, 1)

	assert.ErrorIs(t, service.SoftDeleteGroup(9999), ErrGroupNotFound)
}

func TestHardDeleteGroup(t *testing.T) {
	service, db := newTestService(t)

	seedUsers(t, db, []models.User{{ID: 1, Username: "alice", Email: "alice@example.com"}})

	created, err := service.CreateGroupWithCriteriaAndEvaluateMembership(
		"editors", "", instanceScope(), []criteria.Spec{manualSpec(t, "alice")})
	require.NoError(t, err)

	require.NoError(t, service.HardDeleteGroup(created.ID))

	_, err = service.GetGroupByID(created.ID)
	assert.ErrorIs(t, err, ErrGroupNotFound)

	// Criteria and memberships are gone with the group.
	var criteriaRows, membershipRows int64

	require.NoError(t, db.Model(&models.Criterion{}).
		Where("group_id = ?", created.ID).Count(&criteriaRows).Error)
	assert.Zero(t, criteriaRows)

	require.NoError(t, db.Model(&models.Membership{}).
		Where("group_id = ?", created.ID).Count(&membershipRows).Error)
	assert.Zero(t, membershipRows)

	assert.ErrorIs(t, service.HardDeleteGroup(9999), ErrGroupNotFound)
}

func TestGetGroupsForUser(t *testing.T) {
	service, db := newTestService(t)

	seedUsers(t, db, []models.User{
		{ID: 1, Username: "alice", Email: "alice@example.com"},
		{ID: 2, Username: "bob", Email: "bob@example.com"},
	})

	groupA, err := service.CreateGroupWithCriteriaAndEvaluateMembership(
		"a", "", instanceScope(), []criteria.Spec{manualSpec(t, "alice")})
	require.NoError(t, err)

	groupB, err := service.CreateGroupWithCriteriaAndEvaluateMembership(
		"b", "", instanceScope(), []criteria.Spec{manualSpec(t, "alice", "bob")})
	require.NoError(t, err)

	aliceGroups, err := service.GetGroupsForUser(1)
	require.NoError(t, err)

	ids := make([]uint, 0, len(aliceGroups))
	for _, g := range aliceGroups {
		ids = append(ids, g.ID)
	}

	assert.ElementsMatch(t, []uint{groupA.ID, groupB.ID}, ids)

	bobGroups, err := service.GetGroupsForUser(2)
	require.NoError(t, err)
	require.Len(t, bobGroups, 1)
	assert.Equal(t, groupB.ID, bobGroups[0].ID)

	members, err := service.GetGroupMembers(groupB.ID)
	require.NoError(t, err)
	assert.Len(t, members, 2)
}
