package catalog

import (
	"slices"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jrsteele09/go-lms-portal/internal/errors"
)

type Level string

const (
	LevelBeginner     Level = "Beginner"
	LevelIntermediate Level = "Intermediate"
	LevelAdvanced     Level = "Advanced"
)

// Course is an offering students can register for. Price is in PKR.
type Course struct {
	ID            int    `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	Price         int    `json:"price"`
	DurationWeeks int    `json:"durationWeeks"`
	Level         Level  `json:"level"`
}

var courses = []Course{
	{
		ID:            1,
		Title:         "O Level Computer Science (2210)",
		Description:   "Comprehensive coverage of the Cambridge O Level Computer Science syllabus with practical coding exercises in Python.",
		Price:         18000,
		DurationWeeks: 10,
		Level:         LevelIntermediate,
	},
	{
		ID:            2,
		Title:         "AS Level Mathematics (9709)",
		Description:   "Master the core concepts of Pure Mathematics, Mechanics, and Statistics as per the CAIE AS Level curriculum.",
		Price:         22000,
		DurationWeeks: 12,
		Level:         LevelAdvanced,
	},
	{
		ID:            3,
		Title:         "O Level Islamiat (2058)",
		Description:   "Deep dive into Islamic history, teachings, and contemporary issues aligned with the Pakistan Studies O Level syllabus.",
		Price:         12000,
		DurationWeeks: 8,
		Level:         LevelBeginner,
	},
	{
		ID:            4,
		Title:         "A Level Business Studies (9609)",
		Description:   "Learn the key principles of business management, marketing, and finance in line with the A Level CAIE syllabus.",
		Price:         24000,
		DurationWeeks: 10,
		Level:         LevelAdvanced,
	},
	{
		ID:            5,
		Title:         "O Level Pakistan Studies (2059)",
		Description:   "Understand Pakistan's history, geography, and development, designed for O Level students.",
		Price:         13000,
		DurationWeeks: 9,
		Level:         LevelIntermediate,
	},
	{
		ID:            6,
		Title:         "O Level English Language (1123)",
		Description:   "Build strong reading, writing, and comprehension skills aligned with the Cambridge O Level English syllabus.",
		Price:         15000,
		DurationWeeks: 8,
		Level:         LevelBeginner,
	},
	{
		ID:            7,
		Title:         "A Level Economics (9708)",
		Description:   "Study microeconomics and macroeconomics concepts following the CAIE A Level pattern with real-world examples from Pakistan.",
		Price:         25000,
		DurationWeeks: 10,
		Level:         LevelAdvanced,
	},
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// All returns a copy of the catalog in display order
func All() []Course {
	return slices.Clone(courses)
}

// Get looks up a course by id
func Get(id int) (Course, error) {
	for _, c := range courses {
		if c.ID == id {
			return c, nil
		}
	}
	return Course{}, errors.Wrapf(errors.ErrCourseNotFound, "[catalog Get] id %d", id)
}

// Search returns the courses whose title, description or level contains query (case-insensitive)
func Search(query string) []Course {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return All()
	}
	var found []Course
	for _, c := range courses {
		if strings.Contains(strings.ToLower(c.Title), q) ||
			strings.Contains(strings.ToLower(c.Description), q) ||
			strings.Contains(strings.ToLower(string(c.Level)), q) {
			found = append(found, c)
		}
	}
	return found
}

// Order is a checkout summary. No payment is taken.
type Order struct {
	Courses  []Course `json:"courses"`
	Subtotal int      `json:"subtotal"`
}

type selection struct {
	IDs []int `validate:"required,min=1,dive,gt=0"`
}

// Checkout builds an order for the selected course ids. Duplicate ids count once.
func Checkout(ids []int) (Order, error) {
	if err := validate.Struct(selection{IDs: ids}); err != nil {
		return Order{}, errors.NewValidationError("courses", "Select at least one course")
	}

	var order Order
	seen := make(map[int]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		c, err := Get(id)
		if err != nil {
			return Order{}, err
		}
		order.Courses = append(order.Courses, c)
		order.Subtotal += c.Price
	}
	return order, nil
}

// ParseIDs reads course ids from a comma-separated list such as "1,3,7". Blank entries are skipped.
func ParseIDs(values ...string) ([]int, error) {
	var ids []int
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.Atoi(part)
			if err != nil {
				return nil, errors.NewValidationError("courses", "Invalid course id "+strconv.Quote(part))
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}
