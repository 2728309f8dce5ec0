package dashboard

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"incubator/portal/client/api"
)

type fakeAPI struct {
	fail map[string]error
}

func (f fakeAPI) err(name string) error { return f.fail[name] }

func (f fakeAPI) GetAlumniProfile(ctx context.Context) (api.AlumniProfile, error) {
	return api.AlumniProfile{UserID: 1, FullName: "Ada"}, f.err("profile")
}

func (f fakeAPI) GetInvestorProfile(ctx context.Context) (api.InvestorProfile, error) {
	return api.InvestorProfile{UserID: 2, FullName: "Ivy"}, f.err("profile")
}

func (f fakeAPI) ListNews(ctx context.Context) ([]api.News, error) {
	if err := f.err("news"); err != nil {
		return nil, err
	}
	return []api.News{{ID: 1, Title: "Demo day"}}, nil
}

func (f fakeAPI) ListRooms(ctx context.Context) ([]api.ChatRoom, error) {
	if err := f.err("rooms"); err != nil {
		return nil, err
	}
	return []api.ChatRoom{{ID: 3}}, nil
}

func (f fakeAPI) ListTemplates(ctx context.Context) ([]api.Template, error) {
	return []api.Template{{ID: 1, Name: "Seed"}}, f.err("templates")
}

func (f fakeAPI) ListPhases(ctx context.Context, templateID int) ([]api.Phase, error) {
	return []api.Phase{{ID: 10, TemplateID: templateID}}, f.err("phases")
}

func (f fakeAPI) ListTasks(ctx context.Context, templateID, phaseID int) ([]api.Task, error) {
	return []api.Task{{ID: 1, PhaseID: 10}, {ID: 2, PhaseID: 10}, {ID: 3, PhaseID: 10}, {ID: 4, PhaseID: 10}}, f.err("tasks")
}

func (f fakeAPI) ListSubmissions(ctx context.Context, templateID int) ([]api.Submission, error) {
	return []api.Submission{
		{TaskID: 1, Status: api.StatusCompleted},
		{TaskID: 2, Status: api.StatusCompleted},
		{TaskID: 3, Status: api.StatusApproved},
	}, f.err("submissions")
}

func (f fakeAPI) ListAssignments(ctx context.Context) ([]api.Assignment, error) {
	return []api.Assignment{{ID: 1}}, f.err("assignments")
}

func (f fakeAPI) GetLandingPage(ctx context.Context) (api.LandingPage, error) {
	return api.LandingPage{ThemeColor: "#000"}, f.err("landing")
}

func (f fakeAPI) ListAdminRequests(ctx context.Context) ([]api.AdminRequest, error) {
	return []api.AdminRequest{{ID: 1}}, f.err("requests")
}

func TestLoadAlumni_AllSettle(t *testing.T) {
	boom := errors.New("boom")
	d := LoadAlumni(context.Background(), fakeAPI{fail: map[string]error{"news": boom}}, nil)

	require.NotNil(t, d.Profile)
	assert.Equal(t, "Ada", d.Profile.FullName)
	assert.Len(t, d.Rooms, 1)
	assert.NotNil(t, d.News)
	assert.Empty(t, d.News)
	assert.Equal(t, map[string]error{SliceNews: boom}, d.Errors)
}

func TestLoadInvestor_ProfileFailure(t *testing.T) {
	d := LoadInvestor(context.Background(), fakeAPI{fail: map[string]error{"profile": errors.New("404")}}, nil)
	assert.Nil(t, d.Profile)
	assert.Len(t, d.News, 1)
	assert.Contains(t, d.Errors, SliceProfile)
}

func TestLoadMentor_Rows(t *testing.T) {
	d := LoadMentor(context.Background(), fakeAPI{}, nil)
	assert.Empty(t, d.Errors)
	require.Len(t, d.Rows, 1)
	assert.Equal(t, 50, d.Rows[0].Progress.Percent)
}

func TestLoadMentor_FailedSubmissions(t *testing.T) {
	d := LoadMentor(context.Background(), fakeAPI{fail: map[string]error{"submissions": errors.New("down")}}, nil)
	assert.Empty(t, d.Submissions)
	require.Len(t, d.Rows, 1)
	assert.Equal(t, 0, d.Rows[0].Progress.Percent)
	assert.Contains(t, d.Errors, SliceSubmissions)
}

func TestLoadTenantAdminAndSuperAdmin(t *testing.T) {
	ta := LoadTenantAdmin(context.Background(), fakeAPI{fail: map[string]error{"landing": errors.New("x")}}, nil)
	assert.Nil(t, ta.Landing)
	assert.Len(t, ta.Templates, 1)
	assert.Len(t, ta.Assignments, 1)
	assert.Len(t, ta.Errors, 1)

	sa := LoadSuperAdmin(context.Background(), fakeAPI{fail: map[string]error{"requests": errors.New("403")}}, nil)
	assert.Empty(t, sa.Requests)
	assert.Len(t, sa.News, 1)
	assert.Contains(t, sa.Errors, SliceRequests)
}
