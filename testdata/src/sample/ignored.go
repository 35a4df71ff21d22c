package sample

//factexport:ignore metrics - kept out of the size report

func helper() int { return 1 }
