package service

import (
	"fmt"
	"testing"
	"time"

	"kb-portal/internal/data"
	"kb-portal/internal/model"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestData 每个测试一个独立的内存库
// cache=shared 防止连接池里的不同连接各自拿到一个空库
func newTestData(t *testing.T) *data.Data {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, data.Migrate(db))

	return &data.Data{
		DB:           db,
		Bucket:       "kb-docs",
		HistoryQueue: "kb_history_tasks",
	}
}

func createUser(t *testing.T, d *data.Data, username, role string) *model.User {
	t.Helper()
	user := &model.User{
		Username:     username,
		PasswordHash: "x",
		Email:        username + "@example.com",
		Role:         role,
	}
	require.NoError(t, d.DB.Create(user).Error)
	return user
}

func createTeam(t *testing.T, d *data.Data, name string) *model.Team {
	t.Helper()
	team := &model.Team{Name: name}
	require.NoError(t, d.DB.Create(team).Error)
	return team
}

func joinTeam(t *testing.T, d *data.Data, userID, teamID uint, role string) {
	t.Helper()
	require.NoError(t, d.DB.Create(&model.UserTeam{
		UserID:   userID,
		TeamID:   teamID,
		Role:     role,
		JoinedAt: time.Now(),
	}).Error)
}
