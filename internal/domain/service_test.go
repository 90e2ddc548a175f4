package domain_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/workouttracker/internal/domain"
	"example.com/workouttracker/internal/persistence/memory"
	"example.com/workouttracker/internal/platform/logger"
	"example.com/workouttracker/internal/stream"
)

type services struct {
	exercises *domain.ExerciseService
	templates *domain.TemplateService
	sessions  *domain.SessionService
	tplRepo   *memory.TemplateRepository
	sesRepo   *memory.SessionRepository
}

func newServices(opts ...domain.ServiceOption) services {
	store := memory.NewStore(stream.NewNotifier(), logger.Nop())
	tplRepo := memory.NewTemplateRepository(store)
	sesRepo := memory.NewSessionRepository(store)
	return services{
		exercises: domain.NewExerciseService(memory.NewExerciseRepository(store), opts...),
		templates: domain.NewTemplateService(tplRepo, opts...),
		sessions:  domain.NewSessionService(sesRepo, opts...),
		tplRepo:   tplRepo,
		sesRepo:   sesRepo,
	}
}

func TestCreateExerciseAssignsPositiveID(t *testing.T) {
	svc := newServices()
	ctx := context.Background()

	created, err := svc.exercises.CreateExercise(ctx, domain.Exercise{
		Name:           "Pull-up",
		PrimaryMuscles: []domain.MuscleGroup{domain.MuscleBack},
	})
	require.NoError(t, err)
	require.Positive(t, created.ID)

	stored, err := svc.exercises.GetExercise(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created, *stored)
}

func TestCreateExerciseKeepsSuppliedID(t *testing.T) {
	svc := newServices()
	created, err := svc.exercises.CreateExercise(context.Background(), domain.Exercise{
		ID:             77,
		Name:           "Dip",
		PrimaryMuscles: []domain.MuscleGroup{domain.MuscleTriceps},
	})
	require.NoError(t, err)
	require.Equal(t, int64(77), created.ID)
}

func TestCreateExerciseValidation(t *testing.T) {
	svc := newServices()
	ctx := context.Background()

	_, err := svc.exercises.CreateExercise(ctx, domain.Exercise{Name: "", PrimaryMuscles: []domain.MuscleGroup{domain.MuscleChest}})
	require.ErrorIs(t, err, domain.ErrValidation)

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "name", verr.Field)

	_, err = svc.exercises.CreateExercise(ctx, domain.Exercise{Name: "Nothing"})
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestCreateExerciseRejectsUnknownEnumValues(t *testing.T) {
	svc := newServices()
	ctx := context.Background()

	cases := map[string]struct {
		exercise domain.Exercise
		field    string
	}{
		"unknown primary muscle": {
			exercise: domain.Exercise{Name: "Neck curl", PrimaryMuscles: []domain.MuscleGroup{"NECK"}},
			field:    "primary_muscles[0]",
		},
		"lower-case primary muscle": {
			exercise: domain.Exercise{Name: "Crunch", PrimaryMuscles: []domain.MuscleGroup{"abs"}},
			field:    "primary_muscles[0]",
		},
		"unknown secondary muscle": {
			exercise: domain.Exercise{
				Name:             "Row",
				PrimaryMuscles:   []domain.MuscleGroup{domain.MuscleBack},
				SecondaryMuscles: []domain.MuscleGroup{domain.MuscleBiceps, "WINGS"},
			},
			field: "secondary_muscles[1]",
		},
		"unknown equipment": {
			exercise: domain.Exercise{
				Name:           "Sled push",
				PrimaryMuscles: []domain.MuscleGroup{domain.MuscleLegs},
				Equipment:      []domain.Equipment{"SLED"},
			},
			field: "equipment[0]",
		},
		"unknown difficulty": {
			exercise: domain.Exercise{Name: "Squat", PrimaryMuscles: []domain.MuscleGroup{domain.MuscleLegs}, Difficulty: "EXPERT"},
			field:    "difficulty",
		},
		"lower-case category": {
			exercise: domain.Exercise{Name: "Squat", PrimaryMuscles: []domain.MuscleGroup{domain.MuscleLegs}, Category: "strength"},
			field:    "category",
		},
		"unknown type": {
			exercise: domain.Exercise{Name: "Squat", PrimaryMuscles: []domain.MuscleGroup{domain.MuscleLegs}, Type: "HYBRID"},
			field:    "type",
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.exercises.CreateExercise(ctx, tc.exercise)
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			require.Equal(t, tc.field, verr.Field)
		})
	}

	all, err := svc.exercises.ListAllExercises(ctx)
	require.NoError(t, err)
	require.Empty(t, all)
}

func TestCreateExerciseStoresEmptyListsAsEmpty(t *testing.T) {
	svc := newServices()
	ctx := context.Background()

	for name, exercise := range map[string]domain.Exercise{
		"nil lists":   {Name: "Plank", PrimaryMuscles: []domain.MuscleGroup{domain.MuscleCore}},
		"empty lists": {Name: "Side plank", PrimaryMuscles: []domain.MuscleGroup{domain.MuscleObliques}, SecondaryMuscles: []domain.MuscleGroup{}, Instructions: []string{}, Equipment: []domain.Equipment{}},
	} {
		t.Run(name, func(t *testing.T) {
			created, err := svc.exercises.CreateExercise(ctx, exercise)
			require.NoError(t, err)
			require.NotNil(t, created.SecondaryMuscles)
			require.NotNil(t, created.Instructions)
			require.NotNil(t, created.Equipment)

			stored, err := svc.exercises.GetExercise(ctx, created.ID)
			require.NoError(t, err)
			require.Equal(t, created, *stored)
		})
	}
}

func TestClockIDsAreUniqueWithinOneMillisecond(t *testing.T) {
	fixed := time.UnixMilli(1_700_000_000_000)
	ids := domain.NewClockIDs(func() time.Time { return fixed })

	first := ids.NumericID()
	second := ids.NumericID()
	require.Equal(t, int64(1_700_000_000_000), first)
	require.Equal(t, first+1, second)
	require.NotEqual(t, ids.StringID(), ids.StringID())
}

func TestUpdateExerciseRequiresID(t *testing.T) {
	svc := newServices()
	_, err := svc.exercises.UpdateExercise(context.Background(), domain.Exercise{
		Name:           "Lunge",
		PrimaryMuscles: []domain.MuscleGroup{domain.MuscleLegs},
	})
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestUpdateExerciseReplacesWholeRecord(t *testing.T) {
	svc := newServices()
	ctx := context.Background()
	created, err := svc.exercises.CreateExercise(ctx, domain.Exercise{
		Name:           "Lunge",
		Description:    "Step forward",
		PrimaryMuscles: []domain.MuscleGroup{domain.MuscleLegs},
		Equipment:      []domain.Equipment{domain.EquipmentDumbbell},
	})
	require.NoError(t, err)

	_, err = svc.exercises.UpdateExercise(ctx, domain.Exercise{
		ID:             created.ID,
		Name:           "Walking Lunge",
		PrimaryMuscles: []domain.MuscleGroup{domain.MuscleGlutes},
	})
	require.NoError(t, err)

	stored, err := svc.exercises.GetExercise(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "Walking Lunge", stored.Name)
	require.Empty(t, stored.Description)
	require.Empty(t, stored.Equipment)
}

func TestDeleteExerciseRequiresID(t *testing.T) {
	svc := newServices()
	require.ErrorIs(t, svc.exercises.DeleteExercise(context.Background(), 0), domain.ErrValidation)
}

func TestFilterExercisesUsesVisibleList(t *testing.T) {
	svc := newServices()
	ctx := context.Background()
	for _, ex := range []domain.Exercise{
		{Name: "Bench Press", PrimaryMuscles: []domain.MuscleGroup{domain.MuscleChest}, Equipment: []domain.Equipment{domain.EquipmentBarbell}},
		{Name: "Squat", PrimaryMuscles: []domain.MuscleGroup{domain.MuscleLegs}, Equipment: []domain.Equipment{domain.EquipmentBarbell}},
		{Name: "Hidden Press", PrimaryMuscles: []domain.MuscleGroup{domain.MuscleChest}, Equipment: []domain.Equipment{domain.EquipmentBarbell}, IsHidden: true},
	} {
		_, err := svc.exercises.CreateExercise(ctx, ex)
		require.NoError(t, err)
	}

	got, err := svc.exercises.FilterExercises(ctx, "", nil, []domain.Equipment{domain.EquipmentBarbell})
	require.NoError(t, err)
	require.Len(t, got, 2)

	all, err := svc.exercises.ListAllExercises(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
}

func validTemplate() domain.WorkoutTemplate {
	rest := 60
	return domain.WorkoutTemplate{
		Title: "Push Day",
		Exercises: []domain.TemplateExercise{
			{ExerciseID: 1, Sets: 3, Reps: 10, OrderIndex: 0, RestSeconds: &rest},
			{ExerciseID: 2, Sets: 4, Reps: 8, OrderIndex: 1},
		},
	}
}

func TestCreateTemplateRejectsEmptyExerciseList(t *testing.T) {
	svc := newServices()
	_, err := svc.templates.CreateTemplate(context.Background(), domain.WorkoutTemplate{Title: "Empty"})
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestCreateTemplateFieldValidation(t *testing.T) {
	zero := 0
	cases := map[string]func(*domain.WorkoutTemplate){
		"blank title":       func(t *domain.WorkoutTemplate) { t.Title = "  " },
		"zero sets":         func(t *domain.WorkoutTemplate) { t.Exercises[0].Sets = 0 },
		"negative reps":     func(t *domain.WorkoutTemplate) { t.Exercises[1].Reps = -1 },
		"missing exercise":  func(t *domain.WorkoutTemplate) { t.Exercises[0].ExerciseID = 0 },
		"negative order":    func(t *domain.WorkoutTemplate) { t.Exercises[0].OrderIndex = -1 },
		"zero rest seconds": func(t *domain.WorkoutTemplate) { t.Exercises[0].RestSeconds = &zero },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			svc := newServices()
			tpl := validTemplate()
			mutate(&tpl)
			_, err := svc.templates.CreateTemplate(context.Background(), tpl)
			require.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestCreateTemplateAssignsMissingIDs(t *testing.T) {
	svc := newServices()
	ctx := context.Background()
	input := validTemplate()
	input.Exercises[1].ID = "kept"

	created, err := svc.templates.CreateTemplate(ctx, input)
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.NotEmpty(t, created.Exercises[0].ID)
	require.Equal(t, "kept", created.Exercises[1].ID)
	require.Empty(t, input.Exercises[0].ID, "caller's slice must not be mutated")

	stored, err := svc.templates.GetTemplate(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created, *stored)
}

func TestUpdateTemplateRequiresChildIDs(t *testing.T) {
	svc := newServices()
	ctx := context.Background()
	created, err := svc.templates.CreateTemplate(ctx, validTemplate())
	require.NoError(t, err)

	created.Exercises = append(created.Exercises, domain.TemplateExercise{ExerciseID: 3, Sets: 1, Reps: 1, OrderIndex: 2})
	_, err = svc.templates.UpdateTemplate(ctx, created)
	require.ErrorIs(t, err, domain.ErrValidation)

	created.Exercises[2].ID = "new-child"
	_, err = svc.templates.UpdateTemplate(ctx, created)
	require.NoError(t, err)

	stored, err := svc.templates.GetTemplate(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, stored.Exercises, 3)
}

func TestDeleteTemplateCascades(t *testing.T) {
	svc := newServices()
	ctx := context.Background()
	created, err := svc.templates.CreateTemplate(ctx, validTemplate())
	require.NoError(t, err)

	require.NoError(t, svc.templates.DeleteTemplate(ctx, created.ID))

	stored, err := svc.templates.GetTemplate(ctx, created.ID)
	require.NoError(t, err)
	require.Nil(t, stored)
	require.Empty(t, svc.tplRepo.TemplateExerciseRows(created.ID))

	require.ErrorIs(t, svc.templates.DeleteTemplate(ctx, " "), domain.ErrValidation)
}

func TestHideAndUnhideTemplate(t *testing.T) {
	svc := newServices()
	ctx := context.Background()
	created, err := svc.templates.CreateTemplate(ctx, validTemplate())
	require.NoError(t, err)

	require.NoError(t, svc.templates.HideTemplate(ctx, created.ID))
	hidden, err := svc.templates.ListHiddenTemplates(ctx)
	require.NoError(t, err)
	require.Len(t, hidden, 1)
	visible, err := svc.templates.ListTemplates(ctx)
	require.NoError(t, err)
	require.Empty(t, visible)

	require.NoError(t, svc.templates.UnhideTemplate(ctx, created.ID))
	visible, err = svc.templates.ListTemplates(ctx)
	require.NoError(t, err)
	require.Len(t, visible, 1)
}

func TestCreateSessionValidationAndIDs(t *testing.T) {
	svc := newServices()
	ctx := context.Background()

	_, err := svc.sessions.CreateSession(ctx, domain.WorkoutSession{Date: 0})
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.sessions.CreateSession(ctx, domain.WorkoutSession{
		Date:      1,
		Exercises: []domain.PerformedExercise{{ExerciseID: 1, Sets: 0, Reps: 5}},
	})
	require.ErrorIs(t, err, domain.ErrValidation)

	created, err := svc.sessions.CreateSession(ctx, domain.WorkoutSession{
		Date:            time.Now().UnixMilli(),
		DurationSeconds: 1800,
		Exercises:       []domain.PerformedExercise{{ExerciseID: 1, Weight: 50, Sets: 3, Reps: 5}},
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.NotEmpty(t, created.Exercises[0].ID)
	require.InDelta(t, 750.0, created.TotalVolume(), 0.001)
}

func TestDeleteSessionCascades(t *testing.T) {
	svc := newServices()
	ctx := context.Background()
	created, err := svc.sessions.CreateSession(ctx, domain.WorkoutSession{
		Date:      1700000000000,
		Exercises: []domain.PerformedExercise{{ExerciseID: 1, Weight: 10, Sets: 1, Reps: 1}},
	})
	require.NoError(t, err)

	require.NoError(t, svc.sessions.DeleteSession(ctx, created.ID))
	stored, err := svc.sessions.GetSession(ctx, created.ID)
	require.NoError(t, err)
	require.Nil(t, stored)
	require.Empty(t, svc.sesRepo.PerformedExerciseRows(created.ID))
}

func TestStoreErrorsAreWrapped(t *testing.T) {
	boom := errors.New("disk full")
	svc := domain.NewExerciseService(failingExercises{err: boom})

	_, err := svc.CreateExercise(context.Background(), domain.Exercise{
		Name:           "Row",
		PrimaryMuscles: []domain.MuscleGroup{domain.MuscleBack},
	})
	require.ErrorIs(t, err, boom)
	require.NotErrorIs(t, err, domain.ErrValidation)

	_, err = svc.FilterExercises(context.Background(), "", nil, nil)
	require.ErrorIs(t, err, boom)
}

type failingExercises struct {
	domain.ExerciseRepository
	err error
}

func (f failingExercises) Create(context.Context, domain.Exercise) error { return f.err }

func (f failingExercises) List(context.Context) ([]domain.Exercise, error) { return nil, f.err }
