// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 StaffRoster Contributors

// Package auth provides administrator authentication and session issuance.
//
// # Domain Types
//
// Administrators should be created using NewAdministrator, which validates
// the username and password hash. Direct struct initialization bypasses
// validation and may create invalid state.
//
// # Services
//
//   - Authenticator - registration and credential verification
//   - SessionIssuer - signed token issuance, verification and session cookies
//
// Sessions are not persisted. A session is the signed token plus the cookies
// issued alongside it; it ends when the token expires. There is no
// server-side revocation.
//
// # Errors
//
// Every failure carries an oops code. KindOf maps an error onto the
// taxonomy handlers translate into responses: MissingFields,
// InvalidCredentials, AlreadyRegistered and InternalFailure.
package auth
