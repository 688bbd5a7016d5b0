// Package tenants manages platforms, companies, and the associations
// between them.
//
// Platforms are the applications in the suite (HR portal, payroll) and
// companies are the customer organizations using them. A company is
// associated to the platforms it operates on; grants and menus are
// scoped to those pairs. Platform slugs are generated from the name
// when not supplied.
package tenants
