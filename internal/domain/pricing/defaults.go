package pricing

// Canonical catalog defaults. Seeding inserts only the entries whose code is
// not already present, so re-running a seed is harmless.

// DefaultLabTests is the canonical lab test list (35 entries).
var DefaultLabTests = []LabTest{
	{Code: "CBC001", TestName: "Complete Blood Count (CBC)", Category: "Hematology", BasePrice: 25},
	{Code: "ESR001", TestName: "Erythrocyte Sedimentation Rate (ESR)", Category: "Hematology", BasePrice: 15},
	{Code: "HBA001", TestName: "HbA1c (Glycated Haemoglobin)", Category: "Hematology", BasePrice: 30},
	{Code: "COAG001", TestName: "Coagulation Profile (PT/INR)", Category: "Hematology", BasePrice: 28},
	{Code: "FER001", TestName: "Ferritin", Category: "Hematology", BasePrice: 22},
	{Code: "B1201", TestName: "Vitamin B12", Category: "Hematology", BasePrice: 24},
	{Code: "FOL001", TestName: "Folate", Category: "Hematology", BasePrice: 24},
	{Code: "GLU001", TestName: "Fasting Blood Glucose", Category: "Biochemistry", BasePrice: 12},
	{Code: "OGTT01", TestName: "Oral Glucose Tolerance Test", Category: "Biochemistry", BasePrice: 35},
	{Code: "LIP001", TestName: "Lipid Profile", Category: "Biochemistry", BasePrice: 28},
	{Code: "LFT001", TestName: "Liver Function Tests", Category: "Biochemistry", BasePrice: 32},
	{Code: "RFT001", TestName: "Renal Function Tests", Category: "Biochemistry", BasePrice: 30},
	{Code: "ELEC01", TestName: "Electrolyte Panel", Category: "Biochemistry", BasePrice: 20},
	{Code: "URIC01", TestName: "Uric Acid", Category: "Biochemistry", BasePrice: 14},
	{Code: "CAL001", TestName: "Calcium Profile", Category: "Biochemistry", BasePrice: 18},
	{Code: "MAG001", TestName: "Magnesium", Category: "Biochemistry", BasePrice: 16},
	{Code: "AMY001", TestName: "Amylase", Category: "Biochemistry", BasePrice: 18},
	{Code: "CRP001", TestName: "C-Reactive Protein (CRP)", Category: "Immunology", BasePrice: 20},
	{Code: "RF001", TestName: "Rheumatoid Factor", Category: "Immunology", BasePrice: 22},
	{Code: "ANA001", TestName: "Antinuclear Antibody (ANA)", Category: "Immunology", BasePrice: 38},
	{Code: "IGE001", TestName: "Total IgE", Category: "Immunology", BasePrice: 26},
	{Code: "TSH001", TestName: "Thyroid Stimulating Hormone (TSH)", Category: "Endocrinology", BasePrice: 22},
	{Code: "FT4001", TestName: "Free T4", Category: "Endocrinology", BasePrice: 20},
	{Code: "FT3001", TestName: "Free T3", Category: "Endocrinology", BasePrice: 20},
	{Code: "TEST01", TestName: "Testosterone", Category: "Endocrinology", BasePrice: 28},
	{Code: "CORT01", TestName: "Cortisol", Category: "Endocrinology", BasePrice: 30},
	{Code: "VITD01", TestName: "Vitamin D (25-OH)", Category: "Endocrinology", BasePrice: 32},
	{Code: "PSA001", TestName: "Prostate Specific Antigen (PSA)", Category: "Oncology", BasePrice: 30},
	{Code: "CEA001", TestName: "Carcinoembryonic Antigen (CEA)", Category: "Oncology", BasePrice: 34},
	{Code: "URN001", TestName: "Urinalysis", Category: "Microbiology", BasePrice: 10},
	{Code: "URNC01", TestName: "Urine Culture", Category: "Microbiology", BasePrice: 22},
	{Code: "STL001", TestName: "Stool Culture", Category: "Microbiology", BasePrice: 24},
	{Code: "THRT01", TestName: "Throat Swab Culture", Category: "Microbiology", BasePrice: 20},
	{Code: "HIV001", TestName: "HIV 1/2 Antibody Screen", Category: "Serology", BasePrice: 26},
	{Code: "HEPB01", TestName: "Hepatitis B Surface Antigen", Category: "Serology", BasePrice: 24},
}

// DefaultDoctorFees is the canonical consultation fee schedule. DoctorID is
// filled in per-clinic when the schedule is applied to a named doctor; the
// seed inserts role-level template fees.
var DefaultDoctorFees = []DoctorFee{
	{Code: "GC001", DoctorRole: "General Practitioner", ServiceName: "General Consultation", BasePrice: 50},
	{Code: "GC002", DoctorRole: "General Practitioner", ServiceName: "Extended Consultation", BasePrice: 80},
	{Code: "GC003", DoctorRole: "General Practitioner", ServiceName: "Telephone Consultation", BasePrice: 35},
	{Code: "SC001", DoctorRole: "Consultant", ServiceName: "Specialist Consultation", BasePrice: 150},
	{Code: "SC002", DoctorRole: "Consultant", ServiceName: "Specialist Follow-up", BasePrice: 100},
	{Code: "NC001", DoctorRole: "Nurse", ServiceName: "Nurse Appointment", BasePrice: 25},
	{Code: "NC002", DoctorRole: "Nurse", ServiceName: "Vaccination Visit", BasePrice: 30},
	{Code: "PH001", DoctorRole: "Physiotherapist", ServiceName: "Physiotherapy Session", BasePrice: 60},
	{Code: "MH001", DoctorRole: "Psychiatrist", ServiceName: "Mental Health Assessment", BasePrice: 180},
	{Code: "MH002", DoctorRole: "Psychiatrist", ServiceName: "Therapy Session", BasePrice: 120},
}

// DefaultImagingServices is the canonical imaging list.
var DefaultImagingServices = []ImagingService{
	{Code: "XR001", ImagingType: "X-Ray, Chest", Modality: "X-Ray", BodyPart: "Chest", BasePrice: 80},
	{Code: "XR002", ImagingType: "X-Ray, Limb", Modality: "X-Ray", BodyPart: "Limb", BasePrice: 70},
	{Code: "XR003", ImagingType: "X-Ray, Spine", Modality: "X-Ray", BodyPart: "Spine", BasePrice: 90},
	{Code: "US001", ImagingType: "Ultrasound, Abdomen", Modality: "Ultrasound", BodyPart: "Abdomen", BasePrice: 120},
	{Code: "US002", ImagingType: "Ultrasound, Pelvis", Modality: "Ultrasound", BodyPart: "Pelvis", BasePrice: 120},
	{Code: "US003", ImagingType: "Ultrasound, Thyroid", Modality: "Ultrasound", BodyPart: "Neck", BasePrice: 110},
	{Code: "CT001", ImagingType: "CT, Head", Modality: "CT", BodyPart: "Head", BasePrice: 350},
	{Code: "CT002", ImagingType: "CT, Chest", Modality: "CT", BodyPart: "Chest", BasePrice: 380},
	{Code: "CT003", ImagingType: "CT, Abdomen & Pelvis", Modality: "CT", BodyPart: "Abdomen", BasePrice: 420},
	{Code: "MR001", ImagingType: "MRI, Brain", Modality: "MRI", BodyPart: "Head", BasePrice: 500},
	{Code: "MR002", ImagingType: "MRI, Knee", Modality: "MRI", BodyPart: "Knee", BasePrice: 450},
	{Code: "MR003", ImagingType: "MRI, Lumbar Spine", Modality: "MRI", BodyPart: "Spine", BasePrice: 480},
	{Code: "MG001", ImagingType: "Mammogram", Modality: "Mammography", BodyPart: "Breast", BasePrice: 160},
	{Code: "DX001", ImagingType: "DEXA Bone Density Scan", Modality: "DEXA", BodyPart: "Whole Body", BasePrice: 140},
	{Code: "EC001", ImagingType: "Echocardiogram", Modality: "Ultrasound", BodyPart: "Heart", BasePrice: 220},
}
