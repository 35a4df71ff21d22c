//line renamed_test.go:1
package linedir

func one() int { return 1 }
