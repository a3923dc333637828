package catalog

// Course is a single catalog entry describing one course offering.
// Records are flat; code uniqueness is NOT enforced, duplicates resolve
// to first match on lookup.
type Course struct {
	Code          string `json:"code" form:"code"`
	Name          string `json:"name" form:"name"`
	Instructor    string `json:"instructor" form:"instructor"`
	Semester      string `json:"semester" form:"semester"`
	Schedule      string `json:"schedule" form:"schedule"`
	Classroom     string `json:"classroom" form:"classroom"`
	Prerequisites string `json:"prerequisites" form:"prerequisites"`
	Grading       string `json:"grading" form:"grading"`
	Description   string `json:"description" form:"description"`
}

// MissingFields returns the required fields that are empty. Code, name,
// and instructor are required; everything else may be blank.
func (c Course) MissingFields() []string {
	var missing []string
	if c.Code == "" {
		missing = append(missing, "code")
	}
	if c.Name == "" {
		missing = append(missing, "name")
	}
	if c.Instructor == "" {
		missing = append(missing, "instructor")
	}
	return missing
}
