package repo

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

var (
	// DoctorsColumns holds the columns for the "doctors" table.
	DoctorsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "name", Type: field.TypeString},
		{Name: "email", Type: field.TypeString, Unique: true},
		{Name: "password_hash", Type: field.TypeString},
		{Name: "is_approved", Type: field.TypeBool, Default: false},
		{Name: "subscription_plan", Type: field.TypeEnum, Enums: []string{PlanBasic, PlanPremium}, Default: PlanBasic},
		{Name: "booking_link", Type: field.TypeString, Unique: true},
		{Name: "clinic_name", Type: field.TypeString, Default: ""},
		{Name: "clinic_location", Type: field.TypeString, Default: ""},
		{Name: "clinic_working_hours", Type: field.TypeString, Default: ""},
		{Name: "clinic_fees", Type: field.TypeInt64, Default: 0},
		{Name: "created_at", Type: field.TypeTime},
	}
	// DoctorsTable holds the schema information for the "doctors" table.
	DoctorsTable = &schema.Table{
		Name:       "doctors",
		Columns:    DoctorsColumns,
		PrimaryKey: []*schema.Column{DoctorsColumns[0]},
	}

	// DoctorSlotsColumns holds the columns for the "doctor_slots" table.
	DoctorSlotsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "position", Type: field.TypeInt},
		{Name: "slot_date", Type: field.TypeTime},
		{Name: "slot_time", Type: field.TypeString},
		{Name: "is_booked", Type: field.TypeBool, Default: false},
		{Name: "patient_id", Type: field.TypeUUID, Nullable: true},
		{Name: "doctor_id", Type: field.TypeUUID},
	}
	// DoctorSlotsTable holds the schema information for the "doctor_slots" table.
	DoctorSlotsTable = &schema.Table{
		Name:       "doctor_slots",
		Columns:    DoctorSlotsColumns,
		PrimaryKey: []*schema.Column{DoctorSlotsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "doctor_slots_doctors_slots",
				Columns:    []*schema.Column{DoctorSlotsColumns[6]},
				RefColumns: []*schema.Column{DoctorsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "doctorslot_doctor_id_slot_date_slot_time",
				Unique:  true,
				Columns: []*schema.Column{DoctorSlotsColumns[6], DoctorSlotsColumns[2], DoctorSlotsColumns[3]},
			},
			{
				Name:    "doctorslot_doctor_id_position",
				Unique:  false,
				Columns: []*schema.Column{DoctorSlotsColumns[6], DoctorSlotsColumns[1]},
			},
		},
	}

	// PatientsColumns holds the columns for the "patients" table.
	PatientsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "name", Type: field.TypeString},
		{Name: "email", Type: field.TypeString, Unique: true},
		{Name: "phone", Type: field.TypeString, Nullable: true},
		{Name: "created_at", Type: field.TypeTime},
	}
	// PatientsTable holds the schema information for the "patients" table.
	PatientsTable = &schema.Table{
		Name:       "patients",
		Columns:    PatientsColumns,
		PrimaryKey: []*schema.Column{PatientsColumns[0]},
	}

	// AppointmentsColumns holds the columns for the "appointments" table.
	AppointmentsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "slot_id", Type: field.TypeUUID, Nullable: true},
		{Name: "appointment_date", Type: field.TypeTime},
		{Name: "appointment_time", Type: field.TypeString},
		{Name: "token_number", Type: field.TypeInt},
		{Name: "status", Type: field.TypeEnum, Enums: []string{StatusPending, StatusConfirmed, StatusCancelled, StatusMissed}, Default: StatusPending},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
		{Name: "doctor_id", Type: field.TypeUUID},
		{Name: "patient_id", Type: field.TypeUUID},
	}
	// AppointmentsTable holds the schema information for the "appointments" table.
	AppointmentsTable = &schema.Table{
		Name:       "appointments",
		Columns:    AppointmentsColumns,
		PrimaryKey: []*schema.Column{AppointmentsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "appointments_doctors_appointments",
				Columns:    []*schema.Column{AppointmentsColumns[8]},
				RefColumns: []*schema.Column{DoctorsColumns[0]},
				OnDelete:   schema.NoAction,
			},
			{
				Symbol:     "appointments_patients_appointments",
				Columns:    []*schema.Column{AppointmentsColumns[9]},
				RefColumns: []*schema.Column{PatientsColumns[0]},
				OnDelete:   schema.NoAction,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "appointment_doctor_id_appointment_date",
				Unique:  false,
				Columns: []*schema.Column{AppointmentsColumns[8], AppointmentsColumns[2]},
			},
			{
				Name:    "appointment_patient_id_status",
				Unique:  false,
				Columns: []*schema.Column{AppointmentsColumns[9], AppointmentsColumns[5]},
			},
		},
	}

	// OneTimeCodesColumns holds the columns for the "one_time_codes" table.
	OneTimeCodesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "email", Type: field.TypeString},
		{Name: "code_hash", Type: field.TypeString},
		{Name: "expires_at", Type: field.TypeTime},
		{Name: "created_at", Type: field.TypeTime},
	}
	// OneTimeCodesTable holds the schema information for the "one_time_codes" table.
	OneTimeCodesTable = &schema.Table{
		Name:       "one_time_codes",
		Columns:    OneTimeCodesColumns,
		PrimaryKey: []*schema.Column{OneTimeCodesColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "onetimecode_email_code_hash",
				Unique:  false,
				Columns: []*schema.Column{OneTimeCodesColumns[1], OneTimeCodesColumns[2]},
			},
			{
				Name:    "onetimecode_expires_at",
				Unique:  false,
				Columns: []*schema.Column{OneTimeCodesColumns[3]},
			},
		},
	}

	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		DoctorsTable,
		DoctorSlotsTable,
		PatientsTable,
		AppointmentsTable,
		OneTimeCodesTable,
	}
)

func init() {
	DoctorSlotsTable.ForeignKeys[0].RefTable = DoctorsTable
	AppointmentsTable.ForeignKeys[0].RefTable = DoctorsTable
	AppointmentsTable.ForeignKeys[1].RefTable = PatientsTable
}
