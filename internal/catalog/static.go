package catalog

// namedTime is a fixed (label, clock time) pair for the built-in daily
// obligations.
type namedTime struct {
	Name string
	Time string
}

// Prayer times are fixed constants supplied here as the prayer-schedule
// collaborator. No astronomical computation takes place; the stored
// location does not alter them.
var prayerSchedule = []namedTime{
	{"Fajr", "05:30"},
	{"Dhuhr", "12:45"},
	{"Asr", "15:30"},
	{"Maghrib", "18:00"},
	{"Isha", "19:30"},
}

var mealSchedule = []namedTime{
	{"Breakfast", "08:00"},
	{"Lunch", "13:00"},
	{"Dinner", "20:00"},
}

const (
	sportTime    = "21:00"
	skincareTime = "09:00"
	skincareDay  = "Friday"
)

// Workout days: Sunday, Wednesday, Saturday.
var sportDays = map[string]bool{
	"Sunday":    true,
	"Wednesday": true,
	"Saturday":  true,
}

// ClassSlot is one row of the weekly class schedule. Time is the full
// "start-end" range; the range string participates in occurrence identity.
type ClassSlot struct {
	Time     string `json:"time"`
	Module   string `json:"module"`
	Type     string `json:"type"`
	Faculty  string `json:"faculty"`
	Location string `json:"location"`
}

// defaultWeeklySchedule is the built-in class table, overridable through
// the weeklySchedule blob.
var defaultWeeklySchedule = map[string][]ClassSlot{
	"Sunday": {
		{"8:30-10:00", "Deep Learning", "Lecture", "S. Berrani", "Amphi 4"},
	},
	"Monday": {
		{"8:30-10:00", "Selected Topics in AI/Technology", "Lecture", "M. Iftene", "Amphi 7"},
		{"10:10-11:40", "Natural Language Processing", "Lecture", "A. Guessoum", "Amphi 6"},
		{"11:50-13:20", "Deep Learning", "Lab", "S. Berrani", "Lab11"},
		{"13:30-15:00", "Deep Learning", "Lab", "S. Berrani", "Lab11"},
	},
	"Tuesday": {
		{"8:30-10:00", "Natural Language Processing", "Lab", "Z. Djouamai", "Lab3"},
		{"10:10-11:40", "Natural Language Processing", "Lab", "Z. Djouamai", "Lab3"},
		{"11:50-13:20", "Human Computer Interaction", "Lab", "C. Djeddi", "Lab2"},
		{"13:30-15:00", "Selected Topics in AI/Technology", "Lab", "M. Iftene", "Lab5"},
	},
	"Wednesday": {
		{"8:30-10:00", "Natural Language Processing", "Lecture", "A. Guessoum", "Amphi 6"},
		{"10:10-11:40", "AI and Ethics", "Lecture", "N. Ouslimani", "Amphi 5"},
		{"11:50-13:20", "Introduction to Mobile Robotics", "Lecture", "M. Tadjine", "Amphi 1"},
		{"13:30-15:00", "Wireless Communication Networks and Systems", "Lab", "H. Tayakout", "Lab1"},
	},
	"Thursday": {
		{"8:30-10:00", "Wireless Communication Networks and Systems", "Lecture", "A. Djouama", "Amphi 6"},
		{"10:10-11:40", "Human Computer Interaction", "Lecture", "K. Heraguemi", "Amphi 5"},
		{"11:50-13:20", "Introduction to Mobile Robotics", "Lab", "A. Khelloufi", "Lab1"},
		{"13:30-15:00", "Introduction to Mobile Robotics", "Lab", "A. Khelloufi", "Lab1"},
	},
	"Friday":   {},
	"Saturday": {},
}

// DefaultLocation is Ain Benian; used until the user stores their own.
var DefaultLocation = Location{Lat: 36.7538, Lng: 3.0588}
