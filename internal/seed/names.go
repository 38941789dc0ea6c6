// Package seed generates a reproducible demo portfolio.
package seed

// Surnames is a curated list of surnames for generated people.
var Surnames = []string{
	"Adams", "Anderson", "Baker", "Barnes", "Bell", "Bennett", "Brooks",
	"Brown", "Butler", "Campbell", "Carter", "Chen", "Clark", "Collins",
	"Cooper", "Cruz", "Davis", "Diaz", "Edwards", "Evans", "Fisher",
	"Flores", "Foster", "Garcia", "Gonzalez", "Gray", "Green", "Hall",
	"Harris", "Hayes", "Henderson", "Hernandez", "Hill", "Howard", "Hughes",
	"Jackson", "James", "Jenkins", "Johnson", "Jones", "Kelly", "Kim",
	"King", "Lee", "Lewis", "Long", "Lopez", "Martin", "Martinez",
	"Miller", "Mitchell", "Moore", "Morgan", "Morris", "Murphy", "Nelson",
	"Nguyen", "Parker", "Patterson", "Perez", "Perry", "Peterson", "Phillips",
	"Powell", "Price", "Ramirez", "Reed", "Reyes", "Richardson", "Rivera",
	"Roberts", "Robinson", "Rodriguez", "Rogers", "Ross", "Russell", "Sanchez",
	"Sanders", "Scott", "Simmons", "Smith", "Stewart", "Sullivan", "Taylor",
	"Thomas", "Thompson", "Torres", "Turner", "Walker", "Ward", "Washington",
	"Watson", "White", "Williams", "Wilson", "Wood", "Wright", "Young",
}

// GivenNames is a curated list of first names.
var GivenNames = []string{
	"Aaron", "Abigail", "Adrian", "Alice", "Amanda", "Andrew", "Anna",
	"Arthur", "Barbara", "Benjamin", "Brenda", "Carl", "Carol", "Catherine",
	"Charles", "Charlotte", "Daniel", "David", "Deborah", "Diana", "Edward",
	"Elizabeth", "Emily", "Emma", "Eric", "Frances", "Frank", "George",
	"Grace", "Hannah", "Harold", "Helen", "Henry", "Isabella", "Jack",
	"James", "Janet", "Jennifer", "Jessica", "John", "Joseph", "Julia",
	"Karen", "Kevin", "Laura", "Linda", "Louis", "Margaret", "Maria",
	"Mark", "Martha", "Matthew", "Michael", "Nancy", "Nathan", "Nicole",
	"Olivia", "Oscar", "Patricia", "Paul", "Peter", "Rachel", "Raymond",
	"Rebecca", "Richard", "Robert", "Rose", "Ruth", "Samuel", "Sarah",
	"Sophia", "Stephen", "Susan", "Thomas", "Victor", "Walter", "Wendy",
	"William", "Zachary",
}

// StreetNames and StreetSuffixes build property addresses.
var StreetNames = []string{
	"Acacia", "Birch", "Canal", "Cedar", "Chapel", "Church", "Dock",
	"Elm", "Garden", "Harbour", "Hawthorn", "High", "King", "Lime",
	"Market", "Mill", "Orchard", "Park", "Queen", "Riverside", "Station",
	"Victoria", "Willow",
}

var StreetSuffixes = []string{
	"Street", "Road", "Lane", "Avenue", "Row", "Court", "Terrace", "Way",
}

// BusinessTypes and their relative frequency among commercial units.
var BusinessTypes = []struct {
	Type   string
	Weight int
}{
	{"Retail", 40},
	{"Office", 30},
	{"Restaurant", 12},
	{"Warehouse", 10},
	{"Workshop", 5},
	{"Clinic", 3},
}

// PaymentMethods are the methods recorded on generated payments.
var PaymentMethods = []string{
	"BANK_TRANSFER",
	"BANK_TRANSFER",
	"CARD",
	"CASH",
	"CHEQUE",
}
