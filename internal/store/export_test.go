package store

// UnstartFrom runs the unstart write from an already loaded task.
var UnstartFrom = (*SQLiteStore).unstart
