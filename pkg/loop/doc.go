// Package loop implements the kit's polling control loop: a single
// goroutine that runs the HAL housekeeping tick and a fixed list of
// periodic tasks, each gated by an asyncdelay timer. There is no
// scheduler and no preemption; every side effect happens on the loop
// goroutine, in task registration order.
package loop
