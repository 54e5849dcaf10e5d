package echoapi_test

import (
	"bytes"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/core/grade"
	"github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/core/subject"
	testutil "github.com/JohnMichaelCabug/ITProfEL1-semi-project-cabug/tests"
)

func Test_gradeApi_save(t *testing.T) {
	app := setup(t)
	ada := testutil.CreateStudent(t, app.studentRepo, "Ada", "Lovelace", "2024-001")
	alan := testutil.CreateStudent(t, app.studentRepo, "Alan", "Turing", "2024-002")
	sub := testutil.CreateSubject(t, app.subjectRepo, "Algorithms", "CS201")
	path := "/v1/subjects/" + sub.ID + "/grades"

	body := fmt.Sprintf(`[
		{"student_id": %q, "prelim": "90", "midterm": "85", "semifinal": " ", "final": "88"},
		{"student_id": %q, "prelim": "70", "midterm": null, "final": "INC"}
	]`, ada.ID, alan.ID)
	rec := app.do(http.MethodPut, path, []byte(body))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var saved []grade.Grade
	decode(t, rec, &saved)
	require.Len(t, saved, 2)
	assert.Equal(t, "90", saved[0].Prelim.String)
	assert.False(t, saved[0].Semifinal.Valid) // blank clears
	assert.False(t, saved[1].Midterm.Valid)
	assert.Equal(t, "INC", saved[1].Final.String)

	// replace Ada's scores; the object form is accepted too
	body = fmt.Sprintf(`{"entries": [{"student_id": %q, "final": "95"}]}`, ada.ID)
	rec = app.do(http.MethodPut, path, []byte(body))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = app.do(http.MethodGet, path)
	require.Equal(t, http.StatusOK, rec.Code)
	var rows []grade.StudentGrade
	decode(t, rec, &rows)
	require.Len(t, rows, 2)
	assert.Equal(t, ada.ID, rows[0].StudentID) // first recorded first
	assert.Equal(t, "Ada Lovelace", rows[0].FullName())
	assert.False(t, rows[0].Prelim.Valid)
	assert.Equal(t, "95", rows[0].Final.String)
	assert.Equal(t, alan.ID, rows[1].StudentID)
}

func Test_gradeApi_save_errors(t *testing.T) {
	app := setup(t)
	ada := testutil.CreateStudent(t, app.studentRepo, "Ada", "Lovelace", "2024-001")
	sub := testutil.CreateSubject(t, app.subjectRepo, "Algorithms", "CS201")
	path := "/v1/subjects/" + sub.ID + "/grades"

	tests := []httpTest{
		{
			name: "unknown subject", path: "/v1/subjects/" + uuid.NewString() + "/grades",
			body:     []byte(`[]`),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: subject.ErrNotFound.Error()}),
		},
		{
			name: "missing student_id", path: path,
			body:     []byte(`[{"prelim": "90"}]`),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"student_id": "this field is required"}),
		},
		{
			name: "malformed student_id", path: path,
			body:     []byte(`[{"student_id": "lol"}]`),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"student_id": "student_id must be a valid UUID"}),
		},
		{
			name: "unknown student", path: path,
			body:     []byte(fmt.Sprintf(`[{"student_id": %q, "final": "80"}, {"student_id": %q, "final": "80"}]`, ada.ID, uuid.NewString())),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: grade.ErrUnknownReference.Error()}),
		},
		{
			name: "not a sheet", path: path,
			body:     []byte(`"lol"`),
			wantCode: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, app.do(http.MethodPut, tt.path, tt.body))
		})
	}

	// the entry before the failing one was kept
	var rows []grade.StudentGrade
	decode(t, app.do(http.MethodGet, path), &rows)
	require.Len(t, rows, 1)
	assert.Equal(t, "80", rows[0].Final.String)
}

func Test_gradeApi_export(t *testing.T) {
	app := setup(t)
	ada := testutil.CreateStudent(t, app.studentRepo, "Ada", "Lovelace", "2024-001")
	sub := testutil.CreateSubject(t, app.subjectRepo, "Algorithms", "CS201")
	testutil.SetGrade(t, app.gradeRepo, ada.ID, sub.ID, [4]string{"90", "80", "", "76"})

	rec := app.do(http.MethodGet, "/v1/subjects/"+sub.ID+"/grades/export")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `attachment; filename="Grades_Algorithms.xlsx"`)

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	rows, err := f.GetRows("Grades")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "2024-001", rows[1][0])
}
