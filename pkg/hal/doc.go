// Package hal defines the hardware abstraction layer the control loop
// runs against: GPIO pin I/O, the character display, and the kit-wide
// setup/housekeeping pair. The package also ships SimKit, a pure
// in-memory implementation used by the simulator and by tests, so
// nothing in this repository requires physical hardware.
//
// Pin and display operations never return errors. The real kit's HAL
// treats hardware faults as undefined behavior and so does this one;
// only lifecycle operations (Setup) can fail.
package hal
