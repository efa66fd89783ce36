/*
	Project: Academia - bootcamp admin console (ref: https://bootcamp.tokoacademy.org)
	Target: academy admins & instructors
*/
package academia

/*
TODO: storage: Postgres academy.Repository (sqlx) so the dev API can run beyond a single process
TODO: admin: `academyctl students import --cohort N file.csv` to bulk enroll students

TODO: Grading
	- download submission files from the console (response_type "file")
	- notify students by email when a grade is returned

TODO: Announcements
	- schedule announcements (publish_at) instead of sending on create
*/
