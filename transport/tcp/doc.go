// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package tcp implements the reactor's raw, non-blocking listening
// socket: creation, option sequencing, and the accept-until-EAGAIN
// drain loop.
package tcp
