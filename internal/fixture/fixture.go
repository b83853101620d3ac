// Package fixture is a small student/test domain modelled on one table. It is
// used by the unit and e2e tests to exercise the store package end to end.
package fixture

import (
	"time"

	"github.com/google/uuid"

	"github.com/onmiddleground/core-dynamo/store"
)

// Entity type discriminators.
const (
	StudentType  = "ST"
	TestType     = "TEST"
	LikeTestType = "LIKTEST"
)

// registeredSegment prefixes the GSI1 sort key of students.
const registeredSegment = "REGDT"

// Student attributes.
var (
	FirstName  = store.MustAttributeSchema("firstName", "fn", store.WithRule(store.Required("First Name")))
	LastName   = store.MustAttributeSchema("lastName", "ln", store.WithRule(store.Required("Last Name")))
	UserName   = store.MustAttributeSchema("userName", "un")
	Email      = store.MustAttributeSchema("email", "eml", store.WithRule(store.ValidEmail("Email Address")))
	Registered = store.MustAttributeSchema("registered", "regdt",
		store.WithType(store.TypeDate), store.WithRule(store.ValidDate("Registered Date")))
	StudentID = store.MustAttributeSchema("studentId", "stid")
)

// Test attributes.
var (
	TestID      = store.MustAttributeSchema("testid", "testid", store.WithRule(store.Required("Test ID")))
	TestName    = store.MustAttributeSchema("name", "nm")
	PassingMark = store.MustAttributeSchema("passingMark", "passmrk", store.WithType(store.TypeNumber))
	LikeCount   = store.MustAttributeSchema("likeCount", "likcnt", store.WithType(store.TypeNumber))
)

// NewStudentEntity returns an empty student, for use with Mapper conversions.
func NewStudentEntity(sys *store.SystemSchemas) *store.Entity {
	return store.NewEntity(sys, FirstName, LastName, Email, UserName, Registered, StudentID)
}

// NewStudent builds a student ready to create. An empty id is replaced by a
// random UUID.
func NewStudent(sys *store.SystemSchemas, firstName, lastName, email, userName string, registered time.Time, id string) *store.Entity {
	if id == "" {
		id = uuid.NewString()
	}
	e := NewStudentEntity(sys)
	e.Set(FirstName, firstName)
	e.Set(LastName, lastName)
	e.Set(Email, email)
	e.Set(UserName, userName)
	e.Set(Registered, registered)
	e.Set(StudentID, id)

	key := store.CreateKey(StudentType, id)
	e.SetCoreDefaults(store.KeyDefinition{
		PK:     key,
		SK:     key,
		GSI1PK: store.CreateKey(StudentType),
		GSI1SK: store.CreateKey(StudentType, registeredSegment, store.FormatDate(registered)),
	}, StudentType)
	return e
}

// NewTestEntity returns an empty test, for use with Mapper conversions.
func NewTestEntity(sys *store.SystemSchemas) *store.Entity {
	return store.NewEntity(sys, TestID, TestName, PassingMark, LikeCount)
}

// NewTest builds a test ready to create. Tests are listed through GSI1.
func NewTest(sys *store.SystemSchemas, id, name string, passingMark int) *store.Entity {
	if id == "" {
		id = uuid.NewString()
	}
	e := NewTestEntity(sys)
	e.Set(TestID, id)
	e.Set(TestName, name)
	e.Set(PassingMark, passingMark)
	e.Set(LikeCount, 0)

	key := store.CreateKey(TestType, id)
	e.SetCoreDefaults(store.KeyDefinition{
		PK:     key,
		SK:     key,
		GSI1PK: store.CreateKey(TestType),
		GSI1SK: key,
	}, TestType)
	return e
}

// NewLikeTest records that a student liked a test. It lives in the test's
// partition so TestLikes can read every like with one query.
func NewLikeTest(sys *store.SystemSchemas, testID, studentID string) *store.Entity {
	e := store.NewEntity(sys, TestID, StudentID)
	e.Set(TestID, testID)
	e.Set(StudentID, studentID)

	pk := store.CreateKey(TestType, testID)
	sk := store.CreateKey(LikeTestType, StudentType, studentID)
	e.SetCoreDefaults(store.KeyDefinition{PK: pk, SK: sk, GSI1PK: pk, GSI1SK: sk}, LikeTestType)
	return e
}

// LikeTestItems creates the like and bumps the test's like counter in one
// transaction.
func LikeTestItems(dao *store.DAO, like *store.Entity) ([]store.TransactionItem, error) {
	put, err := dao.CreateTemplate(like, store.CreateOptions{UseSKInCondition: true})
	if err != nil {
		return nil, err
	}
	sys := dao.Schemas()
	testKey := like.PK()
	return []store.TransactionItem{
		store.PutTransactionItem(put),
		dao.IncrementCount(
			store.KeyPair{KeyName: sys.PK.Alias(), KeyValue: testKey},
			store.KeyPair{KeyName: sys.SK.Alias(), KeyValue: testKey},
			LikeCount.Alias(),
		),
	}, nil
}

// StudentByID addresses one student.
func StudentByID(id string) store.AccessPattern {
	key := store.CreateKey(StudentType, id)
	return store.NewAccessPattern(
		store.NewPartitionKey("pk", store.OpEQ, key),
		store.AccessPatternOptions{SortKey: store.NewSortKey("sk", store.OpEQ, key)},
	)
}

// Students lists every student, ordered by registration date.
func Students() store.AccessPattern {
	return store.NewAccessPattern(
		store.NewPartitionKey("GSI1pk", store.OpEQ, store.CreateKey(StudentType)),
		store.AccessPatternOptions{
			SortKey:   store.NewSortKey("GSI1sk", store.OpBeginsWith, store.CreateKey(StudentType, registeredSegment)),
			IndexName: store.IndexGSI1,
		},
	)
}

// StudentsRegisteredBetween lists students registered in [start, end].
func StudentsRegisteredBetween(start, end time.Time) store.AccessPattern {
	prefix := store.CreateKey(StudentType, registeredSegment)
	return store.NewAccessPattern(
		store.NewPartitionKey("GSI1pk", store.OpEQ, store.CreateKey(StudentType)),
		store.AccessPatternOptions{
			SortKey: store.NewSortKeyBetween("GSI1sk",
				store.CreateKey(prefix, store.FormatDate(start)),
				store.CreateKey(prefix, store.FormatDate(end)),
			),
			IndexName: store.IndexGSI1,
		},
	)
}

// TestByID addresses one test.
func TestByID(id string) store.AccessPattern {
	key := store.CreateKey(TestType, id)
	return store.NewAccessPattern(
		store.NewPartitionKey("pk", store.OpEQ, key),
		store.AccessPatternOptions{SortKey: store.NewSortKey("sk", store.OpEQ, key)},
	)
}

// Tests lists every test through GSI1.
func Tests() store.AccessPattern {
	return store.NewAccessPattern(
		store.NewPartitionKey("GSI1pk", store.OpEQ, store.CreateKey(TestType)),
		store.AccessPatternOptions{IndexName: store.IndexGSI1},
	)
}

// StudentTests lists the tests a student has taken.
func StudentTests(studentID string) store.AccessPattern {
	return store.NewAccessPattern(
		store.NewPartitionKey("pk", store.OpEQ, store.CreateKey(StudentType, studentID)),
		store.AccessPatternOptions{SortKey: store.NewSortKey("sk", store.OpBeginsWith, store.CreateKey(TestType))},
	)
}

// TestLikes lists the students who liked a test.
func TestLikes(testID string) store.AccessPattern {
	return store.NewAccessPattern(
		store.NewPartitionKey("pk", store.OpEQ, store.CreateKey(TestType, testID)),
		store.AccessPatternOptions{SortKey: store.NewSortKey("sk", store.OpBeginsWith, store.CreateKey(LikeTestType, StudentType))},
	)
}
