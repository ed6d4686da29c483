package seed_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"learning-system/internal/models"
	"learning-system/internal/seed"
	"learning-system/internal/testutil"
)

func TestRunIsRepeatable(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	first, err := seed.Run(ctx, db, "admin-password", "student-password")
	require.NoError(t, err)
	require.Equal(t, models.RoleAdmin, first.Admin.Role)
	require.Equal(t, 9, first.Course.TotalLessons)

	second, err := seed.Run(ctx, db, "other", "other")
	require.NoError(t, err)
	require.Equal(t, first.Admin.ID, second.Admin.ID)
	require.Equal(t, first.Course.ID, second.Course.ID)
	require.Len(t, second.Course.Modules, 3)
	require.Len(t, second.Course.Quizzes[0].Questions, 3)

	var courses int64
	require.NoError(t, db.Model(&models.Course{}).Count(&courses).Error)
	require.Equal(t, int64(1), courses)
}
