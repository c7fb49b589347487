package sqlbuilder

var usersId = IntColumnWithIsPrimaryKey("id", NotNullable, IsPrimaryKey)
var usersName = StrColumn("name", NotNullable)
var usersAge = IntColumn("age", Nullable)
var users = NewTable(
	"users",
	usersId,
	usersName,
	usersAge)

var postsId = IntColumnWithIsPrimaryKey("id", NotNullable, IsPrimaryKey)
var postsUserId = IntColumn("user_id", NotNullable)
var postsTitle = StrColumn("title", Nullable)
var posts = NewTable(
	"posts",
	postsId,
	postsUserId,
	postsTitle)
