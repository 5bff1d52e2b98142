package fixtures

import (
	"time"

	"github.com/cmlabs-hris/attendance-reconciler/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-reconciler/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-reconciler/internal/domain/schedule"
)

// ==========================================
// HELPER FUNCTIONS
// ==========================================

func intPtr(i int) *int       { return &i }
func strPtr(s string) *string { return &s }

// ==========================================
// REFERENCE COMPANY
// ==========================================

// ReferenceCompanyID is the tenant the reference day is seeded under.
const ReferenceCompanyID = "0192f1c4-7a00-7c3e-9d21-5f0a3b6c8e10"

// ReferenceDate is the day every reference scan belongs to.
func ReferenceDate() time.Time {
	return time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
}

// ==========================================
// DEFAULT SCHEDULES
// ==========================================

const (
	StandardScheduleID   = "0192f1c4-7a01-7d10-8e00-000000000001"
	EarlyShiftScheduleID = "0192f1c4-7a01-7d10-8e00-000000000002"
)

// GetDefaultSchedules returns the office schedule and the early shift.
func GetDefaultSchedules(companyID string) []schedule.Schedule {
	return []schedule.Schedule{
		{
			ID:                   StandardScheduleID,
			CompanyID:            companyID,
			Name:                 "Standard Office Hours",
			StartMinute:          8 * 60,
			EndMinute:            17 * 60,
			LateToleranceMinutes: 15,
		},
		{
			ID:                   EarlyShiftScheduleID,
			CompanyID:            companyID,
			Name:                 "Early Shift",
			StartMinute:          6 * 60,
			EndMinute:            14 * 60,
			LateToleranceMinutes: 10,
		},
	}
}

// GetDefaultAssignments puts every department on office hours and moves
// emp-6 to the early shift.
func GetDefaultAssignments(companyID string) []schedule.Assignment {
	schedules := GetDefaultSchedules(companyID)
	standard, early := schedules[0], schedules[1]

	var out []schedule.Assignment
	for _, dept := range []string{"IT", "RH", "Finance", "Commercial"} {
		out = append(out, schedule.Assignment{
			CompanyID:  companyID,
			ScheduleID: standard.ID,
			Department: strPtr(dept),
			Schedule:   standard,
		})
	}
	out = append(out, schedule.Assignment{
		CompanyID:  companyID,
		ScheduleID: early.ID,
		EmployeeID: strPtr("emp-6"),
		Schedule:   early,
	})
	return out
}

// ==========================================
// REFERENCE ROSTER
// ==========================================

// GetReferenceEmployees returns the seven employees expected on the reference day.
func GetReferenceEmployees(companyID string) []employee.Employee {
	hired := time.Date(2024, time.January, 8, 0, 0, 0, 0, time.UTC)
	mk := func(id, code, name, dept string) employee.Employee {
		return employee.Employee{
			ID:               id,
			CompanyID:        companyID,
			EmployeeCode:     code,
			FullName:         name,
			Department:       dept,
			EmploymentStatus: employee.EmploymentStatusActive,
			HireDate:         hired,
		}
	}
	return []employee.Employee{
		mk("emp-1", "0001-0001", "Kofi Mensah", "IT"),
		mk("emp-2", "0001-0002", "Ama Owusu", "RH"),
		mk("emp-3", "0001-0003", "Kwame Asante", "Finance"),
		mk("emp-4", "0001-0004", "Akua Boateng", "Commercial"),
		mk("emp-5", "0001-0005", "Yaw Darko", "IT"),
		mk("emp-6", "0001-0006", "Efua Acheampong", "RH"),
		mk("emp-7", "0001-0007", "Ibrahim Sawadogo", "Finance"),
	}
}

// GetReferenceRoster is GetReferenceEmployees in roster form.
func GetReferenceRoster() []attendance.RosterEntry {
	var out []attendance.RosterEntry
	for _, e := range GetReferenceEmployees(ReferenceCompanyID) {
		out = append(out, attendance.RosterEntry{EmployeeID: e.ID, Name: e.FullName, Department: e.Department})
	}
	return out
}

// ==========================================
// REFERENCE SCANS
// ==========================================

// GetReferenceScans returns the raw feed of the reference day, each scan
// carrying the schedule the reader had for the employee. emp-7 never badges.
//
//	emp-1  entry 07:58, entry 08:02 (double badge), exit 17:05  -> present
//	emp-2  entry 08:22, 08:23, 08:24 (double badges), exit 16:45 -> late 7
//	emp-3  entry 08:01, exit 17:02                                -> present
//	emp-4  entry 09:15, exit 17:00                                -> late 60
//	emp-5  entry 08:00, exit 15:30                                -> left early 75
//	emp-6  entry 06:02, exit 14:05 on the early shift             -> present
func GetReferenceScans() []attendance.RawScanEvent {
	office := func(empID, name, dept, at, dir, src string) attendance.RawScanEvent {
		return attendance.RawScanEvent{
			EmployeeID:    empID,
			EmployeeName:  name,
			Department:    dept,
			Time:          at,
			Direction:     dir,
			Source:        src,
			ScheduleStart: strPtr("08:00"),
			ScheduleEnd:   strPtr("17:00"),
			LateTolerance: intPtr(15),
		}
	}
	early := func(at, dir string) attendance.RawScanEvent {
		return attendance.RawScanEvent{
			EmployeeID:    "emp-6",
			EmployeeName:  "Efua Acheampong",
			Department:    "RH",
			Time:          at,
			Direction:     dir,
			Source:        "biometric",
			ScheduleStart: strPtr("06:00"),
			ScheduleEnd:   strPtr("14:00"),
			LateTolerance: intPtr(10),
		}
	}

	return []attendance.RawScanEvent{
		office("emp-1", "Kofi Mensah", "IT", "07:58", "entry", "rfid"),
		office("emp-1", "Kofi Mensah", "IT", "08:02", "entry", "rfid"),
		office("emp-1", "Kofi Mensah", "IT", "17:05", "exit", "rfid"),

		office("emp-2", "Ama Owusu", "RH", "08:22", "entry", "biometric"),
		office("emp-2", "Ama Owusu", "RH", "08:23", "entry", "biometric"),
		office("emp-2", "Ama Owusu", "RH", "08:24", "entry", "biometric"),
		office("emp-2", "Ama Owusu", "RH", "16:45", "exit", "biometric"),

		office("emp-3", "Kwame Asante", "Finance", "08:01", "entry", "rfid"),
		office("emp-3", "Kwame Asante", "Finance", "17:02", "exit", "rfid"),

		office("emp-4", "Akua Boateng", "Commercial", "09:15", "entry", "biometric"),
		office("emp-4", "Akua Boateng", "Commercial", "17:00", "exit", "biometric"),

		office("emp-5", "Yaw Darko", "IT", "08:00", "entry", "rfid"),
		office("emp-5", "Yaw Darko", "IT", "15:30", "exit", "rfid"),

		early("06:02", "entry"),
		early("14:05", "exit"),
	}
}

// GetReferenceEvents parses GetReferenceScans for the reference date.
func GetReferenceEvents(companyID string) []attendance.ScanEvent {
	events, _ := attendance.ParseScanEvents(companyID, ReferenceDate(), GetReferenceScans())
	return events
}
