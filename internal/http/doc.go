// Package http provides HTTP handlers and middleware for the facility
// reservation API.
//
// The router exposes the following endpoints:
//   - GET /facilities, POST /facilities, GET /facilities/{id}, PUT /facilities/{id},
//     DELETE /facilities/{id}: facility catalog endpoints exchanging the `facilityDTO`
//     payload defined in facility_handler.go. Listing and fetching are open to any
//     identified user while mutations require administrator privileges.
//   - GET /facilities/{id}/reservations: the reservations of one facility.
//   - GET /reservations, POST /reservations, PUT /reservations/{id},
//     DELETE /reservations/{id}: reservation lifecycle endpoints exchanging the
//     `reservationDTO` payload defined in reservation_handler.go. Rejected intervals
//     come back as 422 with a localized reason; a reservation the caller does not own
//     behaves as if it did not exist.
//
// Identity arrives from the upstream gateway via the X-User-Id, X-User-Email and
// X-User-Role headers; requests without X-User-Id are rejected with 401.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
