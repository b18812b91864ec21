package models

func (c Company) GetOrganizationId() string {
	return c.OrganizationId
}

func (c CompanyAccount) GetOrganizationId() string {
	return c.OrganizationId
}

func (m MasterAccount) GetOrganizationId() string {
	return m.OrganizationId
}
