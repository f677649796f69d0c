package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/elugabriel/interactive-assessment/internal/config"
	"github.com/elugabriel/interactive-assessment/internal/model"
	"github.com/elugabriel/interactive-assessment/internal/testutil"
)

func newTestService(f *testutil.Store, questionCount int) *ExamService {
	cfg := &config.Config{
		ExamQuestionCount:   questionCount,
		ExamDurationMinutes: 60,
	}
	return NewExamService(f, f.Questions(), f, cfg, zerolog.Nop())
}

func TestStartClosesPreviousExam(t *testing.T) {
	f := testutil.NewStore()
	f.AddQuestion(1, "Capital of France?", "Paris")
	f.AddQuestion(2, "Largest ocean?", "Pacific")
	svc := newTestService(f, 2)

	first, err := svc.Start(context.Background(), 7)
	if err != nil {
		t.Fatalf("first Start: %v", err)
	}
	second, err := svc.Start(context.Background(), 7)
	if err != nil {
		t.Fatalf("second Start: %v", err)
	}

	prev := f.Exams[first.ID]
	if prev.Status != model.ExamStatusCompleted {
		t.Errorf("previous exam status = %q, want %q", prev.Status, model.ExamStatusCompleted)
	}
	if prev.EndTime == nil {
		t.Error("previous exam end time not set")
	}
	if f.Exams[second.ID].Status != model.ExamStatusInProgress {
		t.Errorf("new exam status = %q, want %q", f.Exams[second.ID].Status, model.ExamStatusInProgress)
	}

	inProgress := 0
	for _, e := range f.Exams {
		if e.StudentID == 7 && e.Status == model.ExamStatusInProgress {
			inProgress++
		}
	}
	if inProgress != 1 {
		t.Errorf("in-progress exams = %d, want 1", inProgress)
	}
}

func TestStartSamplesAtMostPoolSize(t *testing.T) {
	f := testutil.NewStore()
	f.AddQuestion(1, "q1", "a1")
	f.AddQuestion(2, "q2", "a2")
	f.AddQuestion(3, "q3", "a3")
	svc := newTestService(f, 50)

	exam, err := svc.Start(context.Background(), 1)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	links := f.Links[exam.ID]
	if len(links) != 3 {
		t.Fatalf("links = %d, want 3", len(links))
	}
	seen := make(map[int64]bool)
	for i, l := range links {
		if l.QuestionOrder != i+1 {
			t.Errorf("link %d order = %d, want %d", i, l.QuestionOrder, i+1)
		}
		if seen[l.QuestionID] {
			t.Errorf("question %d linked twice", l.QuestionID)
		}
		seen[l.QuestionID] = true
	}
}

func TestStartEmptyPool(t *testing.T) {
	f := testutil.NewStore()
	svc := newTestService(f, 50)

	if _, err := svc.Start(context.Background(), 1); !errors.Is(err, ErrNoQuestions) {
		t.Fatalf("Start with empty pool: got %v, want ErrNoQuestions", err)
	}
	if len(f.Exams) != 0 {
		t.Errorf("exams created = %d, want 0", len(f.Exams))
	}
}

func TestSubmitGradesAnswers(t *testing.T) {
	f := testutil.NewStore()
	f.AddQuestion(1, "Capital of France?", "Paris")
	f.AddQuestion(2, "Largest ocean?", "Pacific")
	svc := newTestService(f, 2)

	exam, err := svc.Start(context.Background(), 3)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	q1, q2 := int64(1), int64(2)
	result, err := svc.Submit(context.Background(), exam.ID, 3, []model.AnswerSubmission{
		{QuestionID: &q1, Answer: "  PARIS  "},
		{QuestionID: &q2, Answer: "atlantic"},
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if result.Status != SubmitStatusGraded {
		t.Errorf("status = %q, want %q", result.Status, SubmitStatusGraded)
	}
	if result.TotalScore != 1 {
		t.Errorf("total score = %g, want 1", result.TotalScore)
	}

	stored := f.Exams[exam.ID]
	if stored.Status != model.ExamStatusCompleted {
		t.Errorf("exam status = %q, want %q", stored.Status, model.ExamStatusCompleted)
	}
	if stored.TotalScore != 1 {
		t.Errorf("stored total = %g, want 1", stored.TotalScore)
	}

	for _, a := range f.Answers[exam.ID] {
		switch a.QuestionID {
		case 1:
			if !a.IsCorrect || a.Score != 1 {
				t.Errorf("question 1: correct=%t score=%g, want true/1", a.IsCorrect, a.Score)
			}
		case 2:
			if a.IsCorrect || a.Score != 0 {
				t.Errorf("question 2: correct=%t score=%g, want false/0", a.IsCorrect, a.Score)
			}
		}
	}
}

func TestSubmitSkipsUnlinkedAndNilQuestions(t *testing.T) {
	f := testutil.NewStore()
	f.AddQuestion(1, "q1", "a1")
	svc := newTestService(f, 1)

	exam, err := svc.Start(context.Background(), 3)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	unlinked := int64(99)
	if _, err := svc.Submit(context.Background(), exam.ID, 3, []model.AnswerSubmission{
		{QuestionID: nil, Answer: "ignored"},
		{QuestionID: &unlinked, Answer: "ignored"},
	}); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if n := len(f.Answers[exam.ID]); n != 0 {
		t.Errorf("answer records = %d, want 0", n)
	}
}

func TestSubmitAfterDeadlineAutoSubmits(t *testing.T) {
	f := testutil.NewStore()
	f.AddQuestion(1, "Capital of France?", "Paris")
	f.AddQuestion(2, "Largest ocean?", "Pacific")
	svc := newTestService(f, 2)

	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return start }

	exam, err := svc.Start(context.Background(), 3)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	q1 := int64(1)
	svc.now = func() time.Time { return start.Add(61 * time.Minute) }
	result, err := svc.Submit(context.Background(), exam.ID, 3, []model.AnswerSubmission{
		{QuestionID: &q1, Answer: "Paris"},
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if result.Status != SubmitStatusAutoSubmitted {
		t.Errorf("status = %q, want %q", result.Status, SubmitStatusAutoSubmitted)
	}
	if result.TotalScore != 0 {
		t.Errorf("total score = %g, want 0 (late answers rejected)", result.TotalScore)
	}

	stored := f.Exams[exam.ID]
	if stored.Status != model.ExamStatusAutoSubmitted {
		t.Errorf("exam status = %q, want %q", stored.Status, model.ExamStatusAutoSubmitted)
	}
	if stored.EndTime == nil {
		t.Error("end time not set on auto-submitted exam")
	}
	if n := len(f.Answers[exam.ID]); n != 2 {
		t.Errorf("placeholder answers = %d, want 2", n)
	}
}

func TestAutoSubmitIdempotent(t *testing.T) {
	f := testutil.NewStore()
	f.AddQuestion(1, "q1", "a1")
	f.AddQuestion(2, "q2", "a2")
	svc := newTestService(f, 2)

	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return start }

	exam, err := svc.Start(context.Background(), 5)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	svc.now = func() time.Time { return start.Add(2 * time.Hour) }

	first, err := svc.Overview(context.Background(), exam.ID, 5)
	if err != nil {
		t.Fatalf("first Overview: %v", err)
	}
	if !first.Expired {
		t.Fatal("expected expired state")
	}

	second, err := svc.Overview(context.Background(), exam.ID, 5)
	if err != nil {
		t.Fatalf("second Overview: %v", err)
	}

	if first.Exam.TotalScore != second.Exam.TotalScore {
		t.Errorf("totals differ across repeats: %g vs %g", first.Exam.TotalScore, second.Exam.TotalScore)
	}
	if n := len(f.Answers[exam.ID]); n != 2 {
		t.Errorf("answer records = %d, want 2 (no duplicates)", n)
	}
	if second.Exam.Status != model.ExamStatusAutoSubmitted {
		t.Errorf("status = %q, want %q", second.Exam.Status, model.ExamStatusAutoSubmitted)
	}
}

func TestOverviewRemainingSeconds(t *testing.T) {
	f := testutil.NewStore()
	f.AddQuestion(1, "q1", "a1")
	svc := newTestService(f, 1)

	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return start }

	exam, err := svc.Start(context.Background(), 4)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	svc.now = func() time.Time { return start.Add(10 * time.Minute) }
	state, err := svc.Overview(context.Background(), exam.ID, 4)
	if err != nil {
		t.Fatalf("Overview: %v", err)
	}

	if state.Expired {
		t.Error("exam reported expired inside the allowance")
	}
	if state.RemainingSeconds != 50*60 {
		t.Errorf("remaining = %d, want %d", state.RemainingSeconds, 50*60)
	}
}

func TestOwnershipChecks(t *testing.T) {
	f := testutil.NewStore()
	f.AddQuestion(1, "q1", "a1")
	svc := newTestService(f, 1)

	exam, err := svc.Start(context.Background(), 1)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	if _, err := svc.Overview(context.Background(), exam.ID, 2); !errors.Is(err, ErrForbidden) {
		t.Errorf("other student's Overview: got %v, want ErrForbidden", err)
	}
	if _, err := svc.Overview(context.Background(), 999, 1); !errors.Is(err, ErrExamNotFound) {
		t.Errorf("missing exam: got %v, want ErrExamNotFound", err)
	}
}

func TestQuestionsNeverExposeReferenceAnswers(t *testing.T) {
	f := testutil.NewStore()
	f.AddQuestion(1, "Capital of France?", "Paris")
	svc := newTestService(f, 1)

	exam, err := svc.Start(context.Background(), 6)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	views, err := svc.Questions(context.Background(), exam.ID, 6)
	if err != nil {
		t.Fatalf("Questions: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("views = %d, want 1", len(views))
	}
	if views[0].QuestionText != "Capital of France?" {
		t.Errorf("text = %q", views[0].QuestionText)
	}
}

func TestResultsRequireFinishedExam(t *testing.T) {
	f := testutil.NewStore()
	f.AddQuestion(1, "Capital of France?", "Paris")
	svc := newTestService(f, 1)

	exam, err := svc.Start(context.Background(), 8)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	if _, _, err := svc.Results(context.Background(), exam.ID, 8); !errors.Is(err, ErrExamNotFinished) {
		t.Fatalf("Results on in-progress exam: got %v, want ErrExamNotFinished", err)
	}

	q1 := int64(1)
	if _, err := svc.Submit(context.Background(), exam.ID, 8, []model.AnswerSubmission{
		{QuestionID: &q1, Answer: "paris"},
	}); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	_, details, err := svc.Results(context.Background(), exam.ID, 8)
	if err != nil {
		t.Fatalf("Results: %v", err)
	}
	if len(details) != 1 {
		t.Fatalf("details = %d, want 1", len(details))
	}
	if details[0].CorrectAnswer != "Paris" {
		t.Errorf("reference answer = %q, want %q", details[0].CorrectAnswer, "Paris")
	}
	if !details[0].IsCorrect {
		t.Error("normalized match not accepted")
	}
}

func TestResultsDataSummary(t *testing.T) {
	f := testutil.NewStore()
	f.AddQuestion(1, "q1", "alpha")
	f.AddQuestion(2, "q2", "beta")
	svc := newTestService(f, 2)

	exam, err := svc.Start(context.Background(), 9)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	q1, q2 := int64(1), int64(2)
	if _, err := svc.Submit(context.Background(), exam.ID, 9, []model.AnswerSubmission{
		{QuestionID: &q1, Answer: "alpha"},
		{QuestionID: &q2, Answer: "wrong"},
	}); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	summary, err := svc.ResultsData(context.Background(), exam.ID, 9)
	if err != nil {
		t.Fatalf("ResultsData: %v", err)
	}
	if summary.CorrectCount != 1 || summary.IncorrectCount != 1 {
		t.Errorf("counts = %d/%d, want 1/1", summary.CorrectCount, summary.IncorrectCount)
	}
	if summary.TotalScore != 1 {
		t.Errorf("total = %g, want 1", summary.TotalScore)
	}
	if summary.MaxScore != 2 {
		t.Errorf("max = %d, want 2", summary.MaxScore)
	}
}
