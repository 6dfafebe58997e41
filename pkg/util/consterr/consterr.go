package consterr

//ConstErr is an error implementation backed by a string so that sentinel
// errors can be declared as constants rather than package-level vars
type ConstErr string

//Error returns the value of the underlying string
func (errstr ConstErr) Error() string { return string(errstr) }

var _ error = ConstErr("") //compile time type check
