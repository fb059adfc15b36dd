// Command visitorctl performs operational tasks for the visitor register:
// schema migrations and configuration inspection.
package main

import "os"

func main() {
	os.Exit(execute())
}
