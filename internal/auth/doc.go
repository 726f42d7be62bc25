// Package auth issues and verifies the bearer tokens that guard the HTTP API.
//
// Tokens are HS256-signed JWTs carrying a subject and a role, issued by
// "schematic-core" for the "schematic-api" audience.
// Roles map statically to permissions:
//   - viewer: read the circuit and projects, stream changes
//   - editor: everything a viewer can do, plus edit and undo
//   - admin: everything an editor can do, plus rename and delete projects
//
// There is no user store. Tokens are minted out of band with the
// "schematic token" command and validated by signature only.
package auth
