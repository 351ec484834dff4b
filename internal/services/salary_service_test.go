package services

import (
	"errors"
	"testing"
	"time"

	"saldo/internal/events"
	"saldo/internal/models"
	"saldo/internal/pagination"
	"saldo/internal/testutil"
)

func TestCreateSalary(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		pub := &events.MemoryPublisher{}
		svc := NewSalaryService(db, pub)
		user := testutil.CreateTestUser(t, db)

		salary, err := svc.CreateSalary(user.ID, 2024, testutil.Dec(t, "3000"))
		testutil.AssertNoError(t, err)

		if salary.ID == "" {
			t.Fatal("expected salary ID to be set")
		}
		testutil.AssertDecimal(t, "amount", salary.Amount, "3000")

		published := pub.Events()
		if len(published) != 1 || published[0].Type != events.SalarySaved {
			t.Errorf("expected one salary.saved event, got %+v", published)
		}
	})

	t.Run("duplicate_year", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewSalaryService(db, events.NopPublisher{})
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateSalary(user.ID, 2024, testutil.Dec(t, "3000"))
		testutil.AssertNoError(t, err)

		_, err = svc.CreateSalary(user.ID, 2024, testutil.Dec(t, "3500"))
		testutil.AssertAppError(t, err, "DUPLICATE_SALARY_YEAR")
	})

	t.Run("unique_index_conflict_is_duplicate_year", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewSalaryService(db, events.NopPublisher{})
		user := testutil.CreateTestUser(t, db)

		// A soft-deleted row passes the year check but still holds the
		// unique index, like a row committed by a concurrent request.
		existing := testutil.CreateTestSalary(t, db, user.ID, 2024, "2500")
		if err := db.Delete(&models.Salary{}, "id = ?", existing.ID).Error; err != nil {
			t.Fatalf("failed to soft-delete salary: %v", err)
		}

		_, err := svc.CreateSalary(user.ID, 2024, testutil.Dec(t, "3000"))
		testutil.AssertAppError(t, err, "DUPLICATE_SALARY_YEAR")

		other, err := svc.CreateSalary(user.ID, 2023, testutil.Dec(t, "3000"))
		testutil.AssertNoError(t, err)
		year := 2024
		_, err = svc.UpdateSalary(user.ID, other.ID, &year, nil)
		testutil.AssertAppError(t, err, "DUPLICATE_SALARY_YEAR")
	})

	t.Run("same_year_different_users", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewSalaryService(db, events.NopPublisher{})
		alice := testutil.CreateTestUser(t, db)
		bob := testutil.CreateTestUser(t, db)

		_, err := svc.CreateSalary(alice.ID, 2024, testutil.Dec(t, "3000"))
		testutil.AssertNoError(t, err)
		_, err = svc.CreateSalary(bob.ID, 2024, testutil.Dec(t, "3000"))
		testutil.AssertNoError(t, err)
	})

	t.Run("year_out_of_range", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewSalaryService(db, events.NopPublisher{})
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateSalary(user.ID, 1999, testutil.Dec(t, "3000"))
		testutil.AssertAppError(t, err, "INVALID_INPUT")

		_, err = svc.CreateSalary(user.ID, time.Now().Year()+6, testutil.Dec(t, "3000"))
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("negative_amount", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewSalaryService(db, events.NopPublisher{})
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateSalary(user.ID, 2024, testutil.Dec(t, "-1"))
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("publish_failure_does_not_fail_write", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewSalaryService(db, &events.MemoryPublisher{Err: errors.New("broker down")})
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateSalary(user.ID, 2024, testutil.Dec(t, "3000"))
		testutil.AssertNoError(t, err)
	})
}

func TestGetUserSalaries(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewSalaryService(db, events.NopPublisher{})
	user := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)

	testutil.CreateTestSalary(t, db, user.ID, 2022, "2500")
	testutil.CreateTestSalary(t, db, user.ID, 2024, "3000")
	testutil.CreateTestSalary(t, db, user.ID, 2023, "2800")
	testutil.CreateTestSalary(t, db, other.ID, 2024, "9999")

	resp, err := svc.GetUserSalaries(user.ID, pagination.PageRequest{})
	testutil.AssertNoError(t, err)

	if resp.TotalItems != 3 {
		t.Fatalf("expected 3 salaries, got %d", resp.TotalItems)
	}
	if resp.Data[0].Year != 2024 || resp.Data[2].Year != 2022 {
		t.Errorf("expected newest year first, got %d..%d", resp.Data[0].Year, resp.Data[2].Year)
	}

	asc, err := svc.GetUserSalaries(user.ID, pagination.PageRequest{Sort: "asc", PageSize: 2})
	testutil.AssertNoError(t, err)
	if len(asc.Data) != 2 || asc.Data[0].Year != 2022 {
		t.Errorf("expected first page ascending from 2022, got %+v", asc.Data)
	}
	if asc.TotalPages != 2 {
		t.Errorf("expected 2 pages, got %d", asc.TotalPages)
	}
}

func TestGetSalary(t *testing.T) {
	t.Run("by_id", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewSalaryService(db, events.NopPublisher{})
		user := testutil.CreateTestUser(t, db)
		created := testutil.CreateTestSalary(t, db, user.ID, 2024, "3000")

		salary, err := svc.GetSalaryByID(user.ID, created.ID)
		testutil.AssertNoError(t, err)
		if salary.Year != 2024 {
			t.Errorf("expected year 2024, got %d", salary.Year)
		}
	})

	t.Run("other_users_salary_not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewSalaryService(db, events.NopPublisher{})
		owner := testutil.CreateTestUser(t, db)
		intruder := testutil.CreateTestUser(t, db)
		created := testutil.CreateTestSalary(t, db, owner.ID, 2024, "3000")

		_, err := svc.GetSalaryByID(intruder.ID, created.ID)
		testutil.AssertAppError(t, err, "SALARY_NOT_FOUND")
	})

	t.Run("by_year", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewSalaryService(db, events.NopPublisher{})
		user := testutil.CreateTestUser(t, db)
		testutil.CreateTestSalary(t, db, user.ID, 2024, "3000")

		salary, err := svc.GetSalaryByYear(user.ID, 2024)
		testutil.AssertNoError(t, err)
		testutil.AssertDecimal(t, "amount", salary.Amount, "3000")

		_, err = svc.GetSalaryByYear(user.ID, 2023)
		testutil.AssertAppError(t, err, "SALARY_NOT_FOUND")
	})
}

func TestUpdateSalary(t *testing.T) {
	t.Run("amount", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewSalaryService(db, events.NopPublisher{})
		user := testutil.CreateTestUser(t, db)
		created := testutil.CreateTestSalary(t, db, user.ID, 2024, "3000")

		amount := testutil.Dec(t, "3200.50")
		salary, err := svc.UpdateSalary(user.ID, created.ID, nil, &amount)
		testutil.AssertNoError(t, err)
		testutil.AssertDecimal(t, "amount", salary.Amount, "3200.50")
		if salary.Year != 2024 {
			t.Errorf("expected year unchanged, got %d", salary.Year)
		}
	})

	t.Run("keeping_own_year_is_allowed", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewSalaryService(db, events.NopPublisher{})
		user := testutil.CreateTestUser(t, db)
		created := testutil.CreateTestSalary(t, db, user.ID, 2024, "3000")

		year := 2024
		_, err := svc.UpdateSalary(user.ID, created.ID, &year, nil)
		testutil.AssertNoError(t, err)
	})

	t.Run("moving_onto_taken_year", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewSalaryService(db, events.NopPublisher{})
		user := testutil.CreateTestUser(t, db)
		testutil.CreateTestSalary(t, db, user.ID, 2023, "2800")
		created := testutil.CreateTestSalary(t, db, user.ID, 2024, "3000")

		year := 2023
		_, err := svc.UpdateSalary(user.ID, created.ID, &year, nil)
		testutil.AssertAppError(t, err, "DUPLICATE_SALARY_YEAR")
	})

	t.Run("not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewSalaryService(db, events.NopPublisher{})
		owner := testutil.CreateTestUser(t, db)
		intruder := testutil.CreateTestUser(t, db)
		created := testutil.CreateTestSalary(t, db, owner.ID, 2024, "3000")

		amount := testutil.Dec(t, "1")
		_, err := svc.UpdateSalary(intruder.ID, created.ID, nil, &amount)
		testutil.AssertAppError(t, err, "SALARY_NOT_FOUND")
	})
}
