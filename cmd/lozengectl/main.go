// Command lozengectl sorts key files, benchmarks merge strategies and checks
// their invariants.
package main

func main() {
	execute()
}
