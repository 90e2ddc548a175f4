package domain

// MuscleGroup names a muscle region an exercise trains.
type MuscleGroup string

const (
	MuscleChest      MuscleGroup = "CHEST"
	MuscleBack       MuscleGroup = "BACK"
	MuscleShoulders  MuscleGroup = "SHOULDERS"
	MuscleBiceps     MuscleGroup = "BICEPS"
	MuscleTriceps    MuscleGroup = "TRICEPS"
	MuscleForearms   MuscleGroup = "FOREARMS"
	MuscleCore       MuscleGroup = "CORE"
	MuscleAbs        MuscleGroup = "ABS"
	MuscleObliques   MuscleGroup = "OBLIQUES"
	MuscleLowerBack  MuscleGroup = "LOWER_BACK"
	MuscleGlutes     MuscleGroup = "GLUTES"
	MuscleQuadriceps MuscleGroup = "QUADRICEPS"
	MuscleHamstrings MuscleGroup = "HAMSTRINGS"
	MuscleCalves     MuscleGroup = "CALVES"
	MuscleLegs       MuscleGroup = "LEGS"
	MuscleFullBody   MuscleGroup = "FULL_BODY"
	MuscleCardio     MuscleGroup = "CARDIO"
)

// MuscleGroups lists every known muscle group.
var MuscleGroups = []MuscleGroup{
	MuscleChest, MuscleBack, MuscleShoulders, MuscleBiceps, MuscleTriceps, MuscleForearms,
	MuscleCore, MuscleAbs, MuscleObliques, MuscleLowerBack, MuscleGlutes, MuscleQuadriceps,
	MuscleHamstrings, MuscleCalves, MuscleLegs, MuscleFullBody, MuscleCardio,
}

// Equipment names a piece of kit an exercise requires.
type Equipment string

const (
	EquipmentNone           Equipment = "NONE"
	EquipmentBarbell        Equipment = "BARBELL"
	EquipmentDumbbell       Equipment = "DUMBBELL"
	EquipmentKettlebell     Equipment = "KETTLEBELL"
	EquipmentMachine        Equipment = "MACHINE"
	EquipmentCable          Equipment = "CABLE"
	EquipmentBench          Equipment = "BENCH"
	EquipmentPullUpBar      Equipment = "PULL_UP_BAR"
	EquipmentResistanceBand Equipment = "RESISTANCE_BAND"
	EquipmentMedicineBall   Equipment = "MEDICINE_BALL"
	EquipmentFoamRoller     Equipment = "FOAM_ROLLER"
	EquipmentOther          Equipment = "OTHER"
)

// EquipmentKinds lists every known equipment value.
var EquipmentKinds = []Equipment{
	EquipmentNone, EquipmentBarbell, EquipmentDumbbell, EquipmentKettlebell, EquipmentMachine,
	EquipmentCable, EquipmentBench, EquipmentPullUpBar, EquipmentResistanceBand,
	EquipmentMedicineBall, EquipmentFoamRoller, EquipmentOther,
}

// Difficulty grades how demanding an exercise is.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "BEGINNER"
	DifficultyIntermediate Difficulty = "INTERMEDIATE"
	DifficultyAdvanced     Difficulty = "ADVANCED"
)

// Difficulties lists every known difficulty.
var Difficulties = []Difficulty{DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced}

// Category groups exercises by training goal.
type Category string

const (
	CategoryStrength    Category = "STRENGTH"
	CategoryCardio      Category = "CARDIO"
	CategoryFlexibility Category = "FLEXIBILITY"
	CategoryBalance     Category = "BALANCE"
	CategoryPlyometric  Category = "PLYOMETRIC"
	CategoryOther       Category = "OTHER"
)

// Categories lists every known category.
var Categories = []Category{
	CategoryStrength, CategoryCardio, CategoryFlexibility, CategoryBalance, CategoryPlyometric, CategoryOther,
}

// ExerciseType describes the movement pattern of an exercise.
type ExerciseType string

const (
	TypeCompound   ExerciseType = "COMPOUND"
	TypeIsolation  ExerciseType = "ISOLATION"
	TypeBodyweight ExerciseType = "BODYWEIGHT"
	TypeTimed      ExerciseType = "TIMED"
)

// ExerciseTypes lists every known exercise type.
var ExerciseTypes = []ExerciseType{TypeCompound, TypeIsolation, TypeBodyweight, TypeTimed}
