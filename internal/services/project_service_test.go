package services

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codebaseshow/codebaseshow/internal/models"
)

func TestImplementationStars(t *testing.T) {
	base := func() *models.Implementation {
		impl := models.NewImplementation(uuid.New(), uuid.New())
		impl.GithubData = []byte(`{"stargazers_count":123}`)
		return impl
	}

	t.Run("Root URL exposes stars", func(t *testing.T) {
		impl := base()
		impl.RepositoryURL = "https://github.com/owner/repo"
		stars := implementationStars(impl)
		require.NotNil(t, stars)
		assert.Equal(t, 123, *stars)
	})

	t.Run("Subdirectory URL hides stars", func(t *testing.T) {
		impl := base()
		impl.RepositoryURL = "https://github.com/owner/monorepo/tree/main/examples/app"
		assert.Nil(t, implementationStars(impl))
	})

	t.Run("Missing cached data hides stars", func(t *testing.T) {
		impl := base()
		impl.RepositoryURL = "https://github.com/owner/repo"
		impl.GithubData = nil
		assert.Nil(t, implementationStars(impl))
	})
}

func TestBackupPublicData(t *testing.T) {
	f := newServiceFixture(t)
	publicPath := t.TempDir()
	projectService := NewProjectService(f.projects, f.impls, publicPath)

	impl := f.newImplementation(f.member)
	impl.RepositoryURL = "https://github.com/bob/todomvc-react"
	impl.Status = models.StatusApproved
	impl.GithubData = []byte(`{"stargazers_count":42}`)
	require.NoError(t, f.impls.Create(impl))

	unreleased := &models.Project{
		ID:     uuid.New(),
		Slug:   "secret-upcoming",
		Name:   "Secret Upcoming",
		Status: models.ProjectStatusComingSoon,
	}
	require.NoError(t, f.projects.Create(unreleased))

	require.NoError(t, projectService.BackupPublicData())

	data, err := os.ReadFile(filepath.Join(publicPath, PublicDataFileName))
	require.NoError(t, err)

	var snapshot publicDataSnapshot
	require.NoError(t, json.Unmarshal(data, &snapshot))

	// The coming-soon project must not be published before launch
	require.Len(t, snapshot.Projects, 1)
	assert.Equal(t, "todomvc", snapshot.Projects[0].Slug)
	assert.False(t, snapshot.GeneratedOn.IsZero())

	require.Len(t, snapshot.Projects[0].Implementations, 1)
	entry := snapshot.Projects[0].Implementations[0]
	assert.Equal(t, "https://github.com/bob/todomvc-react", entry.RepositoryURL)
	require.NotNil(t, entry.NumberOfStars)
	assert.Equal(t, 42, *entry.NumberOfStars)
}

func TestRefreshAllNumberOfImplementations(t *testing.T) {
	f := newServiceFixture(t)
	projectService := NewProjectService(f.projects, f.impls, t.TempDir())

	require.NoError(t, projectService.RefreshAllNumberOfImplementations())
	assert.Equal(t, 0, f.project.NumberOfImplementations)
}

func TestCreateProject(t *testing.T) {
	f := newServiceFixture(t)
	projectService := NewProjectService(f.projects, f.impls, t.TempDir())

	t.Run("Admin creates a valid project", func(t *testing.T) {
		project := &models.Project{
			ID:     uuid.New(),
			Slug:   "realworld",
			Name:   "RealWorld",
			Status: models.ProjectStatusAvailable,
		}
		require.NoError(t, projectService.Create(f.admin, project))
		assert.Equal(t, f.admin.ID, project.OwnerID)
	})

	t.Run("Non-admin is rejected", func(t *testing.T) {
		project := &models.Project{
			ID:     uuid.New(),
			Slug:   "realworld-2",
			Name:   "RealWorld 2",
			Status: models.ProjectStatusAvailable,
		}
		err := projectService.Create(f.member, project)
		assert.True(t, models.IsCode(err, models.ErrCodeForbidden))
	})
}
