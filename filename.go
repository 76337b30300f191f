package notleveldb

const (
	lockFileName              = "LOCK"
	descriptorFileName        = "IDENTITY"
	descriptorRewriteFileName = "IDENTITY-REWRITE"
	infoLogFileName           = "LOG"
	oldInfoLogFileName        = "LOG.old"
)
