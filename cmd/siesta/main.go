// Siesta - tag-driven EC2 instance scheduler.
// Scan. Transition. Done.
package main

func main() {
	Execute()
}
